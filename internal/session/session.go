package session

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/myuser/layerdb/internal/command"
	"github.com/myuser/layerdb/internal/metrics"
)

// UnrecognizedOutput is printed for a line whose first word is not a command.
const UnrecognizedOutput = "Command was not recognized"

type Options struct {
	// Prompt is written before each read. Leave empty when the reader
	// draws its own prompt.
	Prompt    string
	ExitWords []string
	Logger    *zap.Logger
	Metrics   *metrics.Registry
}

// Session feeds lines from a reader to one engine and writes the results.
type Session struct {
	ID string

	eng    command.Engine
	in     LineReader
	out    io.Writer
	prompt string
	exit   map[string]struct{}

	log   *zap.Logger
	stats *metrics.Registry
}

func New(eng command.Engine, in LineReader, out io.Writer, opts Options) *Session {
	id := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	exit := make(map[string]struct{}, len(opts.ExitWords))
	for _, w := range opts.ExitWords {
		exit[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}

	return &Session{
		ID:     id,
		eng:    eng,
		in:     in,
		out:    out,
		prompt: opts.Prompt,
		exit:   exit,
		log:    logger.With(zap.String("session", id)),
		stats:  opts.Metrics,
	}
}

// Run processes lines until EOF, an exit word, or ctx is done.
// It returns the number of non-blank lines handled.
func (s *Session) Run(ctx context.Context) (int, error) {
	var handled int
	for {
		if err := ctx.Err(); err != nil {
			return handled, err
		}
		if s.prompt != "" {
			if _, err := io.WriteString(s.out, s.prompt); err != nil {
				return handled, errors.Wrap(err, "write prompt")
			}
		}

		line, err := s.in.ReadLine()
		if err == io.EOF {
			s.log.Debug("input closed", zap.Int("handled", handled))
			return handled, nil
		}
		if err != nil {
			return handled, errors.Wrap(err, "read command")
		}

		if s.isExit(line) {
			s.log.Debug("exit requested", zap.Int("handled", handled))
			return handled, nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		handled++
		if err := s.Handle(line); err != nil {
			return handled, err
		}
	}
}

// Handle parses and executes one line, writing any output.
// Only write failures are returned; bad commands are reported inline.
func (s *Session) Handle(line string) error {
	cmd, err := command.Parse(line)
	switch {
	case errors.Is(err, command.ErrUnrecognized):
		s.stats.Inc(metrics.Unrecognized)
		s.log.Debug("unrecognized command", zap.String("line", line))
		return s.println(UnrecognizedOutput)
	case err != nil:
		s.stats.Inc(metrics.BadArguments)
		return s.println("ERROR: " + err.Error())
	case cmd.Kind == command.KindNone:
		return nil
	}

	out, ok, err := command.Execute(cmd, s.eng)
	if err != nil {
		s.stats.Inc(metrics.BadArguments)
		return s.println("ERROR: " + err.Error())
	}
	s.stats.Inc(metrics.CommandPrefix + strings.ToLower(cmd.Kind.String()))
	if !ok {
		return nil
	}
	return s.println(out)
}

func (s *Session) isExit(line string) bool {
	_, ok := s.exit[strings.ToLower(strings.TrimSpace(line))]
	return ok
}

func (s *Session) println(line string) error {
	if _, err := fmt.Fprintln(s.out, line); err != nil {
		return errors.Wrap(err, "write output")
	}
	return nil
}
