package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Prompt is printed before each line when reading from a terminal.
	Prompt string `yaml:"prompt"`
	// ExitWords end the session. Matched case-insensitively.
	ExitWords []string `yaml:"exit_words"`
	// Farewell is printed when an interactive session ends.
	Farewell string `yaml:"farewell"`

	LogLevel string `yaml:"log_level"`

	// MetricsAddr serves counters as JSON on /metrics. Empty disables it.
	MetricsAddr string `yaml:"metrics_addr"`
	// HistoryFile keeps readline history across sessions. Empty disables it.
	HistoryFile string `yaml:"history_file"`
}

func getLogLevel() (logLevel string) {
	logLevel = "info"
	if l := os.Getenv("LOG_LEVEL"); len(l) != 0 {
		logLevel = l
	}
	return
}

func NewDefaultConfig() *Config {
	return &Config{
		Prompt:    "> ",
		ExitWords: []string{"exit", "quit", "q"},
		Farewell:  "Bye!",
		LogLevel:  getLogLevel(),
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	c := NewDefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}

	if len(c.ExitWords) == 0 {
		return errors.New("at least one exit word is required")
	}
	for _, w := range c.ExitWords {
		if strings.TrimSpace(w) == "" || strings.ContainsAny(w, " \t") {
			return errors.Errorf("exit word %q must be a single non-empty token", w)
		}
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return lvl, errors.Wrapf(err, "invalid log level %q", c.LogLevel)
	}
	return lvl, nil
}
