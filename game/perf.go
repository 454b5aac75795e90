package game

import (
	"log/slog"
	"sort"
	"time"
)

// Render passes timed by Draw.
const (
	passParticles = "particles"
	passOverlays  = "overlays"
	passUI        = "ui"
)

// renderPerf tracks execution time for each render pass.
type renderPerf struct {
	samples    map[string][]time.Duration
	maxSamples int
}

func newRenderPerf() *renderPerf {
	return &renderPerf{
		samples:    make(map[string][]time.Duration),
		maxSamples: 120, // ~2 seconds of samples at 60fps
	}
}

// Record adds a duration sample for the named pass.
func (p *renderPerf) Record(name string, d time.Duration) {
	p.samples[name] = append(p.samples[name], d)
	if len(p.samples[name]) > p.maxSamples {
		p.samples[name] = p.samples[name][1:]
	}
}

// Avg returns the average duration for the named pass.
func (p *renderPerf) Avg(name string) time.Duration {
	s := p.samples[name]
	if len(s) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range s {
		total += d
	}
	return total / time.Duration(len(s))
}

// SortedNames returns pass names sorted by average duration (descending).
func (p *renderPerf) SortedNames() []string {
	names := make([]string, 0, len(p.samples))
	for name := range p.samples {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return p.Avg(names[i]) > p.Avg(names[j])
	})
	return names
}

// LogStats logs the average of every pass. Headless runs have none.
func (p *renderPerf) LogStats() {
	if len(p.samples) == 0 {
		return
	}
	attrs := make([]any, 0, 2*len(p.samples))
	for _, name := range p.SortedNames() {
		attrs = append(attrs, name+"_us", p.Avg(name).Microseconds())
	}
	slog.Info("render", attrs...)
}
