package storage

// Store defines the interface for the committed key-value store.
// It holds only committed values; an absent key means unset.
type Store interface {
	// Get retrieves a value by key. ok is false if the key has no committed value.
	Get(key string) (value string, ok bool)

	// Put writes a key-value pair, replacing any previous value.
	Put(key, value string)

	// Delete removes a key. It reports whether the key was present.
	Delete(key string) bool

	// Scan iterates over keys in ascending order.
	// start is inclusive, end is exclusive; an empty end means no upper bound.
	// handler is called for each key-value pair; if it returns false, iteration stops.
	Scan(start, end string, handler func(key, value string) bool)

	// Len returns the number of committed keys.
	Len() int
}
