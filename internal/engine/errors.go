package engine

import "github.com/myuser/layerdb/internal/txn"

// ErrNoActiveTransaction is returned by Rollback and Commit at depth 0.
// The engine is unchanged and stays usable.
var ErrNoActiveTransaction = txn.ErrNoActiveTransaction
