package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"github.com/pthm-cable/sphtank/sph"
)

// Phase names for the simulation step. The first five are reported by the
// sph step itself through its PhaseHook.
const (
	PhasePredict   = sph.PhasePredict
	PhaseIndex     = sph.PhaseIndex
	PhaseDensity   = sph.PhaseDensity
	PhaseForces    = sph.PhaseForces
	PhaseIntegrate = sph.PhaseIntegrate
	PhaseTelemetry = "telemetry"
)

// Phases lists every phase in step order.
var Phases = []string{
	PhasePredict, PhaseIndex, PhaseDensity, PhaseForces, PhaseIntegrate, PhaseTelemetry,
}

// PerfCollector times steps and their phases over a rolling window of the most
// recent ticks. Phase names are assigned slots on first use, so recording a tick
// does not allocate once every phase has been seen.
type PerfCollector struct {
	window int
	ticks  []time.Duration   // ring of tick durations
	phases [][]time.Duration // phases[slot] is a ring parallel to ticks
	next   int
	filled int

	slots   map[string]int
	names   []string
	current []time.Duration // phase durations of the tick in progress

	tickStart  time.Time
	phaseStart time.Time
	phase      int // slot of the running phase, -1 if none

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks (60 if < 1).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	pc := &PerfCollector{
		window: windowSize,
		ticks:  make([]time.Duration, windowSize),
		slots:  make(map[string]int),
		phase:  -1,
	}
	for _, name := range Phases {
		pc.slot(name)
	}
	return pc
}

func (p *PerfCollector) slot(name string) int {
	if i, ok := p.slots[name]; ok {
		return i
	}
	i := len(p.names)
	p.slots[name] = i
	p.names = append(p.names, name)
	p.phases = append(p.phases, make([]time.Duration, p.window))
	p.current = append(p.current, 0)
	return i
}

// StartTick begins timing a new step.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	clear(p.current)
	p.phase = -1
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.closePhase(now)
	p.phase = p.slot(phase)
	p.phaseStart = now
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase >= 0 {
		p.current[p.phase] += now.Sub(p.phaseStart)
	}
}

// EndTick closes the running phase and stores the tick in the window.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.phase = -1

	p.ticks[p.next] = now.Sub(p.tickStart)
	for slot, d := range p.current {
		p.phases[slot][p.next] = d
	}
	p.next = (p.next + 1) % p.window
	p.filled = min(p.filled+1, p.window)
}

// RecordFrame marks the end of a rendered frame.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats summarises the collector window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P90TickDuration time.Duration

	// Per-phase mean duration and share of the mean tick, in percent
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64

	// Graphics mode only
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes the window summary. Phases never entered are omitted.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frame,
	}
	if p.frame > 0 {
		stats.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.filled == 0 {
		return stats
	}

	n := time.Duration(p.filled)
	sorted := make([]float64, p.filled)
	var total time.Duration
	for i, d := range p.ticks[:p.filled] {
		total += d
		sorted[i] = float64(d)
	}
	sort.Float64s(sorted)

	stats.AvgTickDuration = total / n
	stats.MinTickDuration = time.Duration(sorted[0])
	stats.MaxTickDuration = time.Duration(sorted[len(sorted)-1])
	stats.P90TickDuration = time.Duration(Percentile(sorted, 0.9))
	if stats.AvgTickDuration > 0 {
		stats.TicksPerSecond = float64(time.Second) / float64(stats.AvgTickDuration)
	}

	for slot, name := range p.names {
		var sum time.Duration
		for _, d := range p.phases[slot][:p.filled] {
			sum += d
		}
		if sum == 0 {
			continue
		}
		avg := sum / n
		stats.PhaseAvg[name] = avg
		if stats.AvgTickDuration > 0 {
			stats.PhasePct[name] = float64(avg) / float64(stats.AvgTickDuration) * 100
		}
	}
	return stats
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"p90_tick_us", s.P90TickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}

	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int64("p90_tick_us", s.P90TickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}

	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd    int64   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	P90TickUS    int64   `csv:"p90_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	PredictPct   float64 `csv:"predict_pct"`
	IndexPct     float64 `csv:"index_pct"`
	DensityPct   float64 `csv:"density_pct"`
	ForcesPct    float64 `csv:"forces_pct"`
	IntegratePct float64 `csv:"integrate_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		P90TickUS:    s.P90TickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		PredictPct:   s.PhasePct[PhasePredict],
		IndexPct:     s.PhasePct[PhaseIndex],
		DensityPct:   s.PhasePct[PhaseDensity],
		ForcesPct:    s.PhasePct[PhaseForces],
		IntegratePct: s.PhasePct[PhaseIntegrate],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
