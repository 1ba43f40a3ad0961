package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"SET a 10", Command{Kind: KindSet, Args: []string{"a", "10"}}},
		{"set a 10", Command{Kind: KindSet, Args: []string{"a", "10"}}},
		{"  Get   a  ", Command{Kind: KindGet, Args: []string{"a"}}},
		{"unset a", Command{Kind: KindUnset, Args: []string{"a"}}},
		{"NumEqualTo 10", Command{Kind: KindNumEqualTo, Args: []string{"10"}}},
		{"BEGIN", Command{Kind: KindBegin, Args: []string{}}},
		{"rollback", Command{Kind: KindRollback, Args: []string{}}},
		{"Commit", Command{Kind: KindCommit, Args: []string{}}},
		{"", Command{Kind: KindNone}},
		{"   \t ", Command{Kind: KindNone}},
	}

	for _, tt := range tests {
		got, err := Parse(tt.line)
		require.NoError(t, err, "line %q", tt.line)
		assert.Equal(t, tt.want.Kind, got.Kind, "line %q", tt.line)
		assert.ElementsMatch(t, tt.want.Args, got.Args, "line %q", tt.line)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		line string
		want error
	}{
		{"FLY away", ErrUnrecognized},
		{"setx a 1", ErrUnrecognized},
		{"SET a", ErrArity},
		{"SET a 1 2", ErrArity},
		{"GET", ErrArity},
		{"BEGIN now", ErrArity},
		{"NUMEQUALTO", ErrArity},
	}

	for _, tt := range tests {
		_, err := Parse(tt.line)
		assert.ErrorIs(t, err, tt.want, "line %q", tt.line)
	}
}

func TestCommandString(t *testing.T) {
	cmd, err := Parse("set a 10")
	require.NoError(t, err)
	assert.Equal(t, "SET a 10", cmd.String())
	assert.Equal(t, "COMMIT", Command{Kind: KindCommit}.String())
	assert.Equal(t, "NONE", KindNone.String())
}
