package txn

import "errors"

// ErrNoActiveTransaction is returned by Rollback and Drain when no block is open.
var ErrNoActiveTransaction = errors.New("no active transaction")

// Entry is a pending write inside a layer. Deleted marks a tombstone:
// the key is unset within the block, which is not the same as the block
// never touching the key.
type Entry struct {
	Value   string
	Deleted bool
}

// Tombstone is the entry written by an unset inside a block.
var Tombstone = Entry{Deleted: true}

// Layer holds the pending writes of one BEGIN block.
type Layer struct {
	writes map[string]Entry
}

func newLayer() *Layer {
	return &Layer{writes: make(map[string]Entry)}
}

// Put records value for key, replacing anything the layer held for it.
func (l *Layer) Put(key, value string) {
	l.writes[key] = Entry{Value: value}
}

// Delete records a tombstone for key.
func (l *Layer) Delete(key string) {
	l.writes[key] = Tombstone
}

// Lookup returns the layer's entry for key, if the layer touched it.
func (l *Layer) Lookup(key string) (Entry, bool) {
	e, ok := l.writes[key]
	return e, ok
}

// Len returns the number of keys touched in this layer.
func (l *Layer) Len() int {
	return len(l.writes)
}

// Range calls fn for every write in the layer; map order, no guarantees.
func (l *Layer) Range(fn func(key string, e Entry)) {
	for k, e := range l.writes {
		fn(k, e)
	}
}

// Stack is the ordered set of open blocks.
// layers[0] is the outermost block, layers[len-1] the innermost.
type Stack struct {
	layers []*Layer
}

func NewStack() *Stack {
	return &Stack{}
}

// Depth is the number of open blocks.
func (s *Stack) Depth() int {
	return len(s.layers)
}

// Begin pushes a new empty layer.
func (s *Stack) Begin() *Layer {
	l := newLayer()
	s.layers = append(s.layers, l)
	return l
}

// Current returns the innermost layer, or nil at depth 0.
func (s *Stack) Current() *Layer {
	if len(s.layers) == 0 {
		return nil
	}
	return s.layers[len(s.layers)-1]
}

// Resolve searches innermost to outermost and returns the first entry found.
// The committed store is not consulted here.
func (s *Stack) Resolve(key string) (Entry, bool) {
	return Resolve(s.layers, key)
}

// Layers returns the open layers outermost first. The slice must not be modified.
func (s *Stack) Layers() []*Layer {
	return s.layers
}

// Rollback pops and returns the innermost layer.
func (s *Stack) Rollback() (*Layer, error) {
	if len(s.layers) == 0 {
		return nil, ErrNoActiveTransaction
	}
	last := len(s.layers) - 1
	l := s.layers[last]
	s.layers[last] = nil
	s.layers = s.layers[:last]
	return l, nil
}

// Drain returns every layer outermost first and empties the stack.
// Applying the result in order reproduces the nested view.
func (s *Stack) Drain() ([]*Layer, error) {
	if len(s.layers) == 0 {
		return nil, ErrNoActiveTransaction
	}
	layers := s.layers
	s.layers = nil
	return layers, nil
}

// Resolve searches layers from the last element back to the first.
func Resolve(layers []*Layer, key string) (Entry, bool) {
	for i := len(layers) - 1; i >= 0; i-- {
		if e, ok := layers[i].Lookup(key); ok {
			return e, true
		}
	}
	return Entry{}, false
}
