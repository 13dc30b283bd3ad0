package arrivals

import (
	"sync/atomic"

	"github.com/travigo/countdown/pkg/ctdf"
)

// Container holds a list that is only ever replaced as a whole. Readers on any goroutine
// see either the complete old list or the complete new one. Returned slices are shared
// and must not be modified.
type Container[T any] struct {
	items atomic.Pointer[[]T]
}

func (c *Container[T]) Replace(items []T) {
	replacement := make([]T, len(items))
	copy(replacement, items)

	c.items.Store(&replacement)
}

func (c *Container[T]) Clear() {
	c.Replace(nil)
}

func (c *Container[T]) Items() []T {
	items := c.items.Load()
	if items == nil {
		return []T{}
	}

	return *items
}

func (c *Container[T]) Len() int {
	return len(c.Items())
}

type ArrivalsContainer = Container[ctdf.Vehicle]

type StopsContainer = Container[ctdf.Stop]

type journeyProgressSnapshot struct {
	serverTime float64
	entries    []ctdf.JourneyProgressEntry
}

// JourneyProgressContainer holds the stops still ahead of the tracked vehicle together with
// the server time they were predicted at
type JourneyProgressContainer struct {
	snapshot atomic.Pointer[journeyProgressSnapshot]
}

func (c *JourneyProgressContainer) Replace(serverTime float64, entries []ctdf.JourneyProgressEntry) {
	replacement := &journeyProgressSnapshot{
		serverTime: serverTime,
		entries:    make([]ctdf.JourneyProgressEntry, len(entries)),
	}
	copy(replacement.entries, entries)

	c.snapshot.Store(replacement)
}

func (c *JourneyProgressContainer) Clear() {
	c.snapshot.Store(nil)
}

func (c *JourneyProgressContainer) load() *journeyProgressSnapshot {
	if snapshot := c.snapshot.Load(); snapshot != nil {
		return snapshot
	}

	return &journeyProgressSnapshot{entries: []ctdf.JourneyProgressEntry{}}
}

func (c *JourneyProgressContainer) Entries() []ctdf.JourneyProgressEntry {
	return c.load().entries
}

func (c *JourneyProgressContainer) ServerTime() float64 {
	return c.load().serverTime
}

// NextStop is the name of the first stop ahead, empty when nothing is tracked
func (c *JourneyProgressContainer) NextStop() string {
	entries := c.Entries()
	if len(entries) == 0 {
		return ""
	}

	return entries[0].StopName
}
