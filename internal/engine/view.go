package engine

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/myuser/layerdb/internal/txn"
)

// View returns the effective key/value mapping: the store overlaid with
// every open block, tombstoned keys removed. It is rebuilt on each call.
func (e *Engine) View() map[string]string {
	view := make(map[string]string, e.base.Len())
	e.base.Scan("", "", func(k, v string) bool {
		view[k] = v
		return true
	})
	for _, layer := range e.stack.Layers() {
		layer.Range(func(k string, ent txn.Entry) {
			if ent.Deleted {
				delete(view, k)
				return
			}
			view[k] = ent.Value
		})
	}
	return view
}

// Audit recounts values from View and compares them with the index.
func (e *Engine) Audit() error {
	want := make(map[string]int)
	for _, v := range e.View() {
		want[v]++
	}
	got := e.counts.Snapshot()

	var diffs []string
	for v, n := range want {
		if got[v] != n {
			diffs = append(diffs, v)
		}
	}
	for v := range got {
		if _, ok := want[v]; !ok {
			diffs = append(diffs, v)
		}
	}
	if len(diffs) == 0 {
		return nil
	}
	sort.Strings(diffs)
	return errors.Errorf("value count index drifted for %d value(s): %s", len(diffs), strings.Join(diffs, ", "))
}
