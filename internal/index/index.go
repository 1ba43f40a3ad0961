package index

// ValueCount tracks, per value, how many keys currently resolve to it.
// Entries that drop to zero are removed so Len reflects live values only.
type ValueCount struct {
	counts map[string]int
}

func New() *ValueCount {
	return &ValueCount{counts: make(map[string]int)}
}

// Increment adds one key to value's count.
func (c *ValueCount) Increment(value string) {
	c.counts[value]++
}

// Decrement removes one key from value's count. A decrement at zero leaves
// the index untouched and returns false.
func (c *ValueCount) Decrement(value string) bool {
	n, ok := c.counts[value]
	if !ok || n <= 0 {
		return false
	}
	if n == 1 {
		delete(c.counts, value)
		return true
	}
	c.counts[value] = n - 1
	return true
}

// Count returns the number of keys resolving to value, 0 if none.
func (c *ValueCount) Count(value string) int {
	return c.counts[value]
}

// Len returns the number of distinct values with a non-zero count.
func (c *ValueCount) Len() int {
	return len(c.counts)
}

// Snapshot copies the current counts.
func (c *ValueCount) Snapshot() map[string]int {
	out := make(map[string]int, len(c.counts))
	for v, n := range c.counts {
		out[v] = n
	}
	return out
}
