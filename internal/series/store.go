// Package series keeps bounded, in-memory time series for the charts.
package series

import (
	"sort"
	"sync"
)

// DefaultCapacity is the number of points retained per series.
const DefaultCapacity = 10000

// Point is one sample: seconds since monitoring started, and a value.
type Point struct {
	Elapsed float64
	Value   float64
}

// Series is a fixed-size ring of points. Appending to a full series
// overwrites the oldest point.
type Series struct {
	mu    sync.RWMutex
	data  []Point
	head  int
	count int
}

func newSeries(capacity int) *Series {
	return &Series{data: make([]Point, capacity)}
}

// Append adds a point.
func (s *Series) Append(p Point) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[s.head] = p
	s.head = (s.head + 1) % len(s.data)
	if s.count < len(s.data) {
		s.count++
	}
}

// Len returns the number of points held.
func (s *Series) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Snapshot copies the points out, oldest first.
func (s *Series) Snapshot() []Point {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Point, s.count)
	start := (s.head - s.count + len(s.data)) % len(s.data)
	for i := 0; i < s.count; i++ {
		out[i] = s.data[(start+i)%len(s.data)]
	}
	return out
}

// Store holds one Series per key. Keys are created on first append.
type Store struct {
	mu       sync.RWMutex
	capacity int
	series   map[string]*Series
}

// NewStore creates a store whose series hold capacity points each.
// A non-positive capacity selects DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		series:   make(map[string]*Series),
	}
}

// Capacity returns the per-series capacity.
func (st *Store) Capacity() int {
	return st.capacity
}

func (st *Store) get(key string, create bool) *Series {
	st.mu.RLock()
	s, ok := st.series[key]
	st.mu.RUnlock()
	if ok || !create {
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok = st.series[key]; !ok {
		s = newSeries(st.capacity)
		st.series[key] = s
	}
	return s
}

// Append adds (elapsed, value) to the series for key.
func (st *Store) Append(key string, elapsed, value float64) {
	st.get(key, true).Append(Point{Elapsed: elapsed, Value: value})
}

// Snapshot returns a copy of the series for key, oldest first. Unknown
// keys yield nil.
func (st *Store) Snapshot(key string) []Point {
	s := st.get(key, false)
	if s == nil {
		return nil
	}
	return s.Snapshot()
}

// Keys returns the known keys, sorted.
func (st *Store) Keys() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	keys := make([]string, 0, len(st.series))
	for k := range st.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
