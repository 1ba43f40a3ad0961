package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/myuser/layerdb/internal/engine"
	"github.com/myuser/layerdb/internal/metrics"
)

func runScript(t *testing.T, script string, opts Options) (string, int) {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = zaptest.NewLogger(t)
	}
	var out bytes.Buffer
	s := New(engine.New(), NewScannerReader(strings.NewReader(script)), &out, opts)
	n, err := s.Run(context.Background())
	require.NoError(t, err)
	return out.String(), n
}

func assertGolden(t *testing.T, name, got string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(got))
}

func TestSessionGolden(t *testing.T) {
	tests := []struct {
		name   string
		script []string
	}{
		{
			name: "walkthrough",
			script: []string{
				"SET a 10",
				"GET a",
				"SET b 10",
				"NUMEQUALTO 10",
				"BEGIN",
				"SET a 20",
				"GET a",
				"NUMEQUALTO 10",
				"NUMEQUALTO 20",
				"ROLLBACK",
				"GET a",
				"NUMEQUALTO 10",
				"BEGIN",
				"UNSET a",
				"GET a",
				"COMMIT",
				"GET a",
				"ROLLBACK",
				"FLY away",
				"SET x",
				"exit",
				"GET b",
			},
		},
		{
			name: "nested_commit",
			script: []string{
				"begin",
				"set a 30",
				"Begin",
				"set a 40",
				"commit",
				"get a",
				"numequalto 30",
				"rollback",
				"commit",
				"",
				"set b 7",
				"set c 7",
				"set d 7",
				"numequalto 7",
				"begin",
				"unset d",
				"rollback",
				"get e",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := runScript(t, strings.Join(tt.script, "\n")+"\n", Options{ExitWords: []string{"exit", "quit", "q"}})
			assertGolden(t, tt.name, out)
		})
	}
}

func TestSessionExitWords(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"exit", "SET a 1\nGET a\nexit\nGET a\n", "1\n"},
		{"quit upper case", "SET a 1\nQUIT\nGET a\n", ""},
		{"q padded", "GET a\n  q  \nGET a\n", "NULL\n"},
		{"eof without exit", "GET a", "NULL\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := runScript(t, tt.script, Options{ExitWords: []string{"exit", "quit", "q"}})
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestSessionLongLine(t *testing.T) {
	long := strings.Repeat("v", 200*1024)
	out, n := runScript(t, "SET k "+long+"\nGET k\nSET a 1\nGET a\n", Options{})

	assert.Equal(t, 4, n)
	assert.Equal(t, long+"\n1\n", out)
}

func TestSessionCRLFInput(t *testing.T) {
	out, _ := runScript(t, "SET a 1\r\nGET a\r\nquit\r\nGET a\r\n", Options{ExitWords: []string{"quit"}})
	assert.Equal(t, "1\n", out)
}

func TestSessionCountsHandledLines(t *testing.T) {
	_, n := runScript(t, "SET a 1\n\n   \nGET a\nbogus\n", Options{})
	assert.Equal(t, 3, n)
}

func TestSessionPrompt(t *testing.T) {
	out, _ := runScript(t, "SET a 1\nGET a\n", Options{Prompt: "> "})
	assert.Equal(t, "> > 1\n> ", out)
}

func TestSessionMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	runScript(t, "SET a 1\nSET b 2\nGET a\nROLLBACK\nnope\nGET\n", Options{Metrics: reg})

	assert.Equal(t, int64(2), reg.Get("cmd_set"))
	assert.Equal(t, int64(1), reg.Get("cmd_get"))
	assert.Equal(t, int64(1), reg.Get("cmd_rollback"))
	assert.Equal(t, int64(1), reg.Get(metrics.Unrecognized))
	assert.Equal(t, int64(1), reg.Get(metrics.BadArguments))
}

func TestSessionStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	s := New(engine.New(), NewScannerReader(strings.NewReader("SET a 1\n")), &out, Options{})
	n, err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, n)
	assert.Empty(t, out.String())
}

type failingReader struct{}

func (failingReader) ReadLine() (string, error) { return "", errors.New("boom") }

func TestSessionReadError(t *testing.T) {
	s := New(engine.New(), failingReader{}, &bytes.Buffer{}, Options{})
	_, err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestSessionHasID(t *testing.T) {
	a := New(engine.New(), failingReader{}, &bytes.Buffer{}, Options{})
	b := New(engine.New(), failingReader{}, &bytes.Buffer{}, Options{})
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
