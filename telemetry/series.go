package telemetry

import "gonum.org/v1/gonum/floats"

// Series is a fixed-capacity history of samples, oldest dropped first.
// The HUD uses it for the kinetic energy graph.
type Series struct {
	buf  []float64
	next int
	full bool
}

// NewSeries creates a series holding up to capacity samples.
func NewSeries(capacity int) *Series {
	if capacity < 1 {
		capacity = 1
	}
	return &Series{buf: make([]float64, capacity)}
}

// Push appends a sample, overwriting the oldest when full.
func (s *Series) Push(v float64) {
	s.buf[s.next] = v
	s.next = (s.next + 1) % len(s.buf)
	if s.next == 0 {
		s.full = true
	}
}

// Len returns the number of stored samples.
func (s *Series) Len() int {
	if s.full {
		return len(s.buf)
	}
	return s.next
}

// Cap returns the capacity.
func (s *Series) Cap() int { return len(s.buf) }

// Clear drops all samples.
func (s *Series) Clear() {
	s.next = 0
	s.full = false
}

// Values appends the samples to dst, oldest first.
func (s *Series) Values(dst []float64) []float64 {
	if !s.full {
		return append(dst, s.buf[:s.next]...)
	}
	dst = append(dst, s.buf[s.next:]...)
	return append(dst, s.buf[:s.next]...)
}

// Last returns the most recent sample, or 0 when empty.
func (s *Series) Last() float64 {
	if s.Len() == 0 {
		return 0
	}
	return s.buf[(s.next-1+len(s.buf))%len(s.buf)]
}

// Range returns the smallest and largest stored samples, (0, 0) when empty.
func (s *Series) Range() (lo, hi float64) {
	n := s.Len()
	if n == 0 {
		return 0, 0
	}
	stored := s.buf[:n]
	return floats.Min(stored), floats.Max(stored)
}
