package arrivals

import (
	"sync/atomic"
	"time"
)

type StreamState int

const (
	StreamIdle StreamState = iota
	StreamRequesting
	// StreamReady is idle with published data from the last cycle
	StreamReady
)

func (s StreamState) String() string {
	switch s {
	case StreamRequesting:
		return "Requesting"
	case StreamReady:
		return "Ready"
	default:
		return "Idle"
	}
}

// stream is one periodic poll loop. Only the tracker loop goroutine touches state,
// generation and ticker; the atomics are read by presentation code on other goroutines.
type stream struct {
	name string

	state      StreamState
	generation uint64
	ticker     *time.Ticker

	interval    atomic.Int64
	deadline    atomic.Int64
	downloading atomic.Bool
}

func newStream(name string) *stream {
	return &stream{name: name}
}

// begin moves Idle or Ready to Requesting. ok is false while a request is still outstanding.
func (s *stream) begin() (generation uint64, ok bool) {
	if s.state == StreamRequesting {
		return s.generation, false
	}

	s.state = StreamRequesting
	s.downloading.Store(true)

	return s.generation, true
}

// finish ends the request issued under generation. It returns false for a request that
// was superseded, whose response must then be discarded.
func (s *stream) finish(generation uint64) bool {
	if generation != s.generation {
		return false
	}

	s.state = StreamIdle
	s.downloading.Store(false)

	return true
}

func (s *stream) ready() {
	if s.state == StreamIdle {
		s.state = StreamReady
	}
}

// invalidate orphans any outstanding request so its response is ignored
func (s *stream) invalidate() {
	s.generation++
	s.state = StreamIdle
	s.downloading.Store(false)
}

func (s *stream) active() bool {
	return s.ticker != nil
}

// armed is active for readers outside the loop goroutine
func (s *stream) armed() bool {
	return s.interval.Load() > 0
}

// arm starts the periodic timer, returning false when it was already running in which
// case the period restarts from now
func (s *stream) arm(interval time.Duration, now time.Time) bool {
	s.interval.Store(int64(interval))
	s.deadline.Store(now.Add(interval).UnixNano())

	if s.ticker != nil {
		s.ticker.Reset(interval)
		return false
	}

	s.ticker = time.NewTicker(interval)

	return true
}

// disarm stops the timer and orphans the outstanding request, returning false when it was not running
func (s *stream) disarm() bool {
	s.invalidate()

	if s.ticker == nil {
		return false
	}

	s.ticker.Stop()
	s.ticker = nil
	s.interval.Store(0)
	s.deadline.Store(0)

	return true
}

func (s *stream) ticked(now time.Time) {
	s.deadline.Store(now.Add(time.Duration(s.interval.Load())).UnixNano())
}

func (s *stream) tickC() <-chan time.Time {
	if s.ticker == nil {
		return nil
	}

	return s.ticker.C
}

// progress is the elapsed share of the current period as a percentage, 0 when the timer is not running
func (s *stream) progress(now time.Time) float64 {
	interval := float64(s.interval.Load())
	if interval <= 0 {
		return 0
	}

	remaining := float64(s.deadline.Load() - now.UnixNano())
	if remaining < 0 {
		remaining = 0
	} else if remaining > interval {
		remaining = interval
	}

	return (interval - remaining) / interval * 100
}
