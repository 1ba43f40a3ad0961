package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
)

// Counter names shared by the engine and the session loop.
const (
	IndexUnderflow   = "index_underflow"
	NoTransaction    = "txn_no_transaction"
	Unrecognized     = "cmd_unrecognized"
	BadArguments     = "cmd_bad_arguments"
	CommandPrefix    = "cmd_"
	CommittedWrites  = "txn_committed_writes"
	RolledBackWrites = "txn_rolled_back_writes"
)

// Registry holds named counters.
// Keys are strings, values are *int64.
type Registry struct {
	counters sync.Map
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Inc increments a counter by 1.
func (r *Registry) Inc(name string) {
	r.Add(name, 1)
}

// Add adds delta to a counter. A nil registry drops the update.
func (r *Registry) Add(name string, delta int64) {
	if r == nil {
		return
	}
	val, ok := r.counters.Load(name)
	if !ok {
		newVal := new(int64)
		val, _ = r.counters.LoadOrStore(name, newVal)
	}
	atomic.AddInt64(val.(*int64), delta)
}

// Get returns the current value of a counter.
func (r *Registry) Get(name string) int64 {
	if r == nil {
		return 0
	}
	val, ok := r.counters.Load(name)
	if !ok {
		return 0
	}
	return atomic.LoadInt64(val.(*int64))
}

// Snapshot copies every counter.
func (r *Registry) Snapshot() map[string]int64 {
	snapshot := make(map[string]int64)
	if r == nil {
		return snapshot
	}
	r.counters.Range(func(key, value any) bool {
		snapshot[key.(string)] = atomic.LoadInt64(value.(*int64))
		return true
	})
	return snapshot
}

// ServeHTTP exposes all counters as JSON.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(r.Snapshot())
}
