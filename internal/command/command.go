package command

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type Kind int

const (
	KindNone Kind = iota
	KindSet
	KindGet
	KindUnset
	KindNumEqualTo
	KindBegin
	KindRollback
	KindCommit
)

var (
	ErrUnrecognized = errors.New("command was not recognized")
	ErrArity        = errors.New("wrong number of arguments")
)

type verb struct {
	kind  Kind
	arity int
}

// commands is the closed set of verbs. Lookup is on the upper-cased name.
var commands = map[string]verb{
	"SET":        {KindSet, 2},
	"GET":        {KindGet, 1},
	"UNSET":      {KindUnset, 1},
	"NUMEQUALTO": {KindNumEqualTo, 1},
	"BEGIN":      {KindBegin, 0},
	"ROLLBACK":   {KindRollback, 0},
	"COMMIT":     {KindCommit, 0},
}

func arity(k Kind) (int, bool) {
	for _, s := range commands {
		if s.kind == k {
			return s.arity, true
		}
	}
	return 0, false
}

func (k Kind) String() string {
	switch k {
	case KindSet:
		return "SET"
	case KindGet:
		return "GET"
	case KindUnset:
		return "UNSET"
	case KindNumEqualTo:
		return "NUMEQUALTO"
	case KindBegin:
		return "BEGIN"
	case KindRollback:
		return "ROLLBACK"
	case KindCommit:
		return "COMMIT"
	default:
		return "NONE"
	}
}

// Command is one parsed input line.
type Command struct {
	Kind Kind
	Args []string
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Kind.String()
	}
	return fmt.Sprintf("%s %s", c.Kind, strings.Join(c.Args, " "))
}

// Parse splits line on whitespace and maps the first field to a Kind,
// ignoring case. A blank line yields KindNone and no error.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{Kind: KindNone}, nil
	}

	name := strings.ToUpper(fields[0])
	s, ok := commands[name]
	if !ok {
		return Command{}, errors.Wrapf(ErrUnrecognized, "%q", fields[0])
	}

	args := fields[1:]
	if len(args) != s.arity {
		return Command{}, errors.Wrapf(ErrArity, "%s expects %d argument(s), got %d", name, s.arity, len(args))
	}
	return Command{Kind: s.kind, Args: args}, nil
}
