package analysis

import "sort"

// Entry is one key of a Counter with its count.
type Entry[K comparable] struct {
	Key   K
	Count int
}

// Counter counts keys and remembers the order each key was first added.
type Counter[K comparable] struct {
	counts map[K]int
	order  []K
}

// NewCounter returns an empty Counter.
func NewCounter[K comparable]() *Counter[K] {
	return &Counter[K]{counts: make(map[K]int)}
}

// Add increments k by n. Adding zero still registers k.
func (c *Counter[K]) Add(k K, n int) {
	if _, ok := c.counts[k]; !ok {
		c.order = append(c.order, k)
	}
	c.counts[k] += n
}

// Inc increments k by one.
func (c *Counter[K]) Inc(k K) {
	c.Add(k, 1)
}

// Max raises k to v if v is larger than its current count.
func (c *Counter[K]) Max(k K, v int) {
	if cur, ok := c.counts[k]; !ok || v > cur {
		c.Add(k, v-cur)
	}
}

// Get returns the count for k.
func (c *Counter[K]) Get(k K) int {
	return c.counts[k]
}

// Len returns the number of distinct keys.
func (c *Counter[K]) Len() int {
	return len(c.order)
}

// Entries returns every key in first-added order.
func (c *Counter[K]) Entries() []Entry[K] {
	out := make([]Entry[K], 0, len(c.order))
	for _, k := range c.order {
		out = append(out, Entry[K]{Key: k, Count: c.counts[k]})
	}
	return out
}

// MostCommon returns the n highest counts in descending order. Equal
// counts keep first-added order. n <= 0 returns every key.
func (c *Counter[K]) MostCommon(n int) []Entry[K] {
	out := c.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// AuthorCount is a per-author tally.
type AuthorCount struct {
	Author string `json:"author" yaml:"author"`
	Count  int    `json:"count" yaml:"count"`
}

// AuthorMean is a per-author average.
type AuthorMean struct {
	Author string  `json:"author" yaml:"author"`
	Mean   float64 `json:"mean" yaml:"mean"`
}

func authorCounts(entries []Entry[string]) []AuthorCount {
	out := make([]AuthorCount, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuthorCount{Author: e.Key, Count: e.Count})
	}
	return out
}

// meanTracker accumulates per-author samples in first-observed order.
type meanTracker struct {
	sums   map[string]float64
	counts map[string]int
	order  []string
}

func newMeanTracker() *meanTracker {
	return &meanTracker{sums: make(map[string]float64), counts: make(map[string]int)}
}

func (m *meanTracker) add(author string, v float64) {
	if _, ok := m.counts[author]; !ok {
		m.order = append(m.order, author)
	}
	m.sums[author] += v
	m.counts[author]++
}

func (m *meanTracker) means() []AuthorMean {
	out := make([]AuthorMean, 0, len(m.order))
	for _, a := range m.order {
		out = append(out, AuthorMean{Author: a, Mean: m.sums[a] / float64(m.counts[a])})
	}
	return out
}
