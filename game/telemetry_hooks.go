package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/sphtank/stream"
	"github.com/pthm-cable/sphtank/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	tick := g.sim.Tick()
	if !g.collector.ShouldFlush(tick) {
		return
	}

	stats := g.collector.Flush(tick, g.sim.Particles, g.params.Mass, g.params.TargetDensity)
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
		g.renderPerf.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// saveSnapshot writes the particle state. Bookmark snapshots go to the snapshot
// directory; manual ones (bookmark nil) prefer the run output directory.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	snapshot := telemetry.NewSnapshot(g.sim, g.params.Tank, g.seed, bookmark)

	var path string
	var err error
	switch {
	case bookmark == nil && g.outputManager != nil:
		path, err = g.outputManager.WriteSnapshot(snapshot)
	case g.snapshotDir != "":
		path, err = telemetry.SaveSnapshot(snapshot, g.snapshotDir)
	default:
		path, err = telemetry.SaveSnapshot(snapshot, "snapshots")
	}
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", g.sim.Tick())
}

// loadSnapshot resumes from a saved particle state.
func (g *Game) loadSnapshot(path string) error {
	snapshot, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return err
	}
	if err := snapshot.Restore(g.sim, g.params, g.setup); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	g.collector.Reset(g.sim.Tick())

	slog.Info("snapshot loaded",
		"path", path,
		"tick", snapshot.Tick,
		"particles", len(snapshot.Particles),
		"seed", snapshot.Seed,
	)
	return nil
}

// publishFrame sends the particle set to stream clients every streamEvery ticks.
func (g *Game) publishFrame() {
	if g.hub == nil || g.sim.Tick()%g.streamEvery != 0 || g.hub.Clients() == 0 {
		return
	}
	if err := g.hub.Publish(stream.NewFrame(g.sim, g.params)); err != nil {
		slog.Error("failed to publish frame", "error", err)
	}
}
