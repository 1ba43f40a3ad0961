package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/myuser/layerdb/internal/config"
	"github.com/myuser/layerdb/internal/engine"
	"github.com/myuser/layerdb/internal/metrics"
	"github.com/myuser/layerdb/internal/session"
)

type rootOptions struct {
	ConfigPath  string
	LogLevel    string
	MetricsAddr string
	NoPrompt    bool
}

// NewRootCommand creates the layerdb command. It reads commands from stdin
// until EOF or an exit word.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "layerdb",
		Short:        "In-memory key-value store with nested transactions",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return run(cmd.Context(), conf, opts.NoPrompt, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve counters as JSON on this address")
	cmd.Flags().BoolVar(&opts.NoPrompt, "no-prompt", false, "never use the interactive line editor")

	return cmd
}

func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	conf := config.NewDefaultConfig()
	if opts.ConfigPath != "" {
		var err error
		if conf, err = config.Load(opts.ConfigPath); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("log-level") {
		conf.LogLevel = opts.LogLevel
	}
	if cmd.Flags().Changed("metrics-addr") {
		conf.MetricsAddr = opts.MetricsAddr
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return conf, nil
}

func newLogger(conf *config.Config) (*zap.Logger, error) {
	lvl, err := conf.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

func run(ctx context.Context, conf *config.Config, noPrompt bool, stdin io.Reader, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger(conf)
	if err != nil {
		return err
	}
	defer logger.Sync()

	reg := metrics.NewRegistry()
	if conf.MetricsAddr != "" {
		srv := serveMetrics(conf.MetricsAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	eng := engine.New(engine.WithLogger(logger), engine.WithMetrics(reg))

	in, interactive, closeIn, err := lineSource(conf, noPrompt, stdin, stdout)
	if err != nil {
		return err
	}
	defer closeIn()

	s := session.New(eng, in, stdout, session.Options{
		ExitWords: conf.ExitWords,
		Logger:    logger,
		Metrics:   reg,
	})
	logger.Info("session started", zap.String("session", s.ID), zap.Bool("interactive", interactive))

	n, err := s.Run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if interactive && conf.Farewell != "" {
		fmt.Fprintln(stdout, conf.Farewell)
	}
	logger.Info("session finished", zap.String("session", s.ID), zap.Int("commands", n))
	return err
}

// lineSource picks readline when stdin is a terminal, a plain scanner otherwise.
func lineSource(conf *config.Config, noPrompt bool, stdin io.Reader, stdout io.Writer) (session.LineReader, bool, func(), error) {
	f, isFile := stdin.(*os.File)
	if noPrompt || !isFile || !readline.IsTerminal(int(f.Fd())) {
		return session.NewScannerReader(stdin), false, func() {}, nil
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      conf.Prompt,
		HistoryFile: conf.HistoryFile,
		Stdin:       io.NopCloser(stdin),
		Stdout:      stdout,
	})
	if err != nil {
		return nil, false, nil, errors.Wrap(err, "start line editor")
	}
	return &readlineReader{rl: rl}, true, func() { rl.Close() }, nil
}

type readlineReader struct {
	rl *readline.Instance
}

// ReadLine maps Ctrl-C on an empty line to end of input; Ctrl-C with text discards the line.
func (r *readlineReader) ReadLine() (string, error) {
	line, err := r.rl.Readline()
	if err == readline.ErrInterrupt {
		if len(line) == 0 {
			return "", io.EOF
		}
		return "", nil
	}
	return line, err
}

func serveMetrics(addr string, reg *metrics.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg)
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics listener failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
	return srv
}
