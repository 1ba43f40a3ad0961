package engine

import (
	"go.uber.org/zap"

	"github.com/myuser/layerdb/internal/index"
	"github.com/myuser/layerdb/internal/metrics"
	"github.com/myuser/layerdb/internal/storage"
	"github.com/myuser/layerdb/internal/txn"
)

// Engine combines the committed store, the stack of open blocks and the
// value count index. After every call returns, the index matches the
// effective view: for each value, the number of keys resolving to it.
//
// An Engine is not safe for concurrent use; one session owns it.
type Engine struct {
	base   storage.Store
	stack  *txn.Stack
	counts *index.ValueCount

	log   *zap.Logger
	stats *metrics.Registry
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMetrics sets the registry that receives engine counters.
func WithMetrics(r *metrics.Registry) Option {
	return func(e *Engine) { e.stats = r }
}

// WithStore replaces the default in-memory committed store. Values already
// in the store are counted when the engine is built.
func WithStore(s storage.Store) Option {
	return func(e *Engine) {
		if s != nil {
			e.base = s
		}
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		base:   storage.NewMemoryStore(),
		stack:  txn.NewStack(),
		counts: index.New(),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.base.Scan("", "", func(_, v string) bool {
		e.counts.Increment(v)
		return true
	})
	return e
}

// Depth is the number of open blocks; 0 means writes go straight to the store.
func (e *Engine) Depth() int {
	return e.stack.Depth()
}

// Set writes value for key in the innermost block, or the store at depth 0.
func (e *Engine) Set(key, value string) {
	e.track(key, func() {
		if l := e.stack.Current(); l != nil {
			l.Put(key, value)
			return
		}
		e.base.Put(key, value)
	})
	e.log.Debug("set", zap.String("key", key), zap.Int("depth", e.stack.Depth()))
}

// Get returns the effective value of key.
func (e *Engine) Get(key string) (string, bool) {
	return e.effective(key)
}

// Unset tombstones key in the innermost block, or removes it from the store at depth 0.
func (e *Engine) Unset(key string) {
	e.track(key, func() {
		if l := e.stack.Current(); l != nil {
			l.Delete(key)
			return
		}
		e.base.Delete(key)
	})
	e.log.Debug("unset", zap.String("key", key), zap.Int("depth", e.stack.Depth()))
}

// NumEqualTo returns how many keys currently resolve to value.
func (e *Engine) NumEqualTo(value string) int {
	return e.counts.Count(value)
}

// Begin opens a nested block.
func (e *Engine) Begin() {
	e.stack.Begin()
	e.log.Debug("begin", zap.Int("depth", e.stack.Depth()))
}

// Rollback discards the innermost block. Outer blocks and the store are untouched.
func (e *Engine) Rollback() error {
	layer, err := e.stack.Rollback()
	if err != nil {
		e.stats.Inc(metrics.NoTransaction)
		return err
	}

	layer.Range(func(key string, ent txn.Entry) {
		newVal, newOK := e.effective(key)
		e.reindex(key, ent.Value, !ent.Deleted, newVal, newOK)
	})
	e.stats.Add(metrics.RolledBackWrites, int64(layer.Len()))
	e.log.Debug("rollback", zap.Int("depth", e.stack.Depth()), zap.Int("writes", layer.Len()))
	return nil
}

// Commit folds every open block into the store, outermost first, and
// closes them all. The effective view is the same before and after.
func (e *Engine) Commit() error {
	layers, err := e.stack.Drain()
	if err != nil {
		e.stats.Inc(metrics.NoTransaction)
		return err
	}

	var writes int
	for i, layer := range layers {
		pending := layers[i:]
		above := layers[i+1:]
		layer.Range(func(key string, ent txn.Entry) {
			oldVal, oldOK := e.resolve(pending, key)
			if ent.Deleted {
				e.base.Delete(key)
			} else {
				e.base.Put(key, ent.Value)
			}
			newVal, newOK := e.resolve(above, key)
			e.reindex(key, oldVal, oldOK, newVal, newOK)
			writes++
		})
	}
	e.stats.Add(metrics.CommittedWrites, int64(writes))
	e.log.Debug("commit", zap.Int("layers", len(layers)), zap.Int("writes", writes))
	return nil
}

func (e *Engine) effective(key string) (string, bool) {
	return e.resolve(e.stack.Layers(), key)
}

// resolve looks key up in layers (last element first), then the store.
func (e *Engine) resolve(layers []*txn.Layer, key string) (string, bool) {
	if ent, ok := txn.Resolve(layers, key); ok {
		if ent.Deleted {
			return "", false
		}
		return ent.Value, true
	}
	return e.base.Get(key)
}

// track applies mutate and moves key's contribution in the index from its
// effective value before to its effective value after.
func (e *Engine) track(key string, mutate func()) {
	oldVal, oldOK := e.effective(key)
	mutate()
	newVal, newOK := e.effective(key)
	e.reindex(key, oldVal, oldOK, newVal, newOK)
}

func (e *Engine) reindex(key, oldVal string, oldOK bool, newVal string, newOK bool) {
	if oldOK == newOK && oldVal == newVal {
		return
	}
	if oldOK && !e.counts.Decrement(oldVal) {
		e.stats.Inc(metrics.IndexUnderflow)
		e.log.Warn("value count underflow", zap.String("key", key), zap.String("value", oldVal))
	}
	if newOK {
		e.counts.Increment(newVal)
	}
}
