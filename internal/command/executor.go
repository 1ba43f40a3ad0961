package command

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/myuser/layerdb/internal/engine"
)

// Literal outputs of the line protocol.
const (
	NullOutput          = "NULL"
	NoTransactionOutput = "NO TRANSACTION"
)

// Engine is the set of store operations a command can run.
type Engine interface {
	Set(key, value string)
	Get(key string) (string, bool)
	Unset(key string)
	NumEqualTo(value string) int
	Begin()
	Rollback() error
	Commit() error
}

var _ Engine = (*engine.Engine)(nil)

// Execute runs cmd against eng. ok reports whether the command prints a line.
// A rollback or commit with no open block prints NO TRANSACTION rather than
// returning an error.
func Execute(cmd Command, eng Engine) (out string, ok bool, err error) {
	if want, known := arity(cmd.Kind); known && len(cmd.Args) != want {
		return "", false, errors.Wrapf(ErrArity, "%s expects %d argument(s), got %d", cmd.Kind, want, len(cmd.Args))
	}

	switch cmd.Kind {
	case KindNone:
		return "", false, nil
	case KindSet:
		eng.Set(cmd.Args[0], cmd.Args[1])
		return "", false, nil
	case KindGet:
		if v, found := eng.Get(cmd.Args[0]); found {
			return v, true, nil
		}
		return NullOutput, true, nil
	case KindUnset:
		eng.Unset(cmd.Args[0])
		return "", false, nil
	case KindNumEqualTo:
		return strconv.Itoa(eng.NumEqualTo(cmd.Args[0])), true, nil
	case KindBegin:
		eng.Begin()
		return "", false, nil
	case KindRollback:
		return transactionResult(eng.Rollback())
	case KindCommit:
		return transactionResult(eng.Commit())
	default:
		return "", false, errors.Errorf("unsupported command kind: %d", cmd.Kind)
	}
}

func transactionResult(err error) (string, bool, error) {
	if errors.Is(err, engine.ErrNoActiveTransaction) {
		return NoTransactionOutput, true, nil
	}
	return "", false, err
}
