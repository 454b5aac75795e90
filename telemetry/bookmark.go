package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkSplash      BookmarkType = "splash"
	BookmarkCompression BookmarkType = "compression"
	BookmarkGuardSpike  BookmarkType = "guard_spike"
	BookmarkSettled     BookmarkType = "settled"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int64        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the flow.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	settledWindows int // consecutive windows with steady kinetic energy
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for settled detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		// Splash: peak speed > 3x rolling average
		if b := bd.checkSplash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Compression: p90 density > 2x rolling average
		if b := bd.checkCompression(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Guard spike: numerical guards fire after a clean history
		if b := bd.checkGuardSpike(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	// Settled: kinetic energy steady over 5 windows
	if b := bd.checkSettled(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns the stored windows, oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	ordered := make([]WindowStats, 0, bd.historySize)
	ordered = append(ordered, bd.history[bd.historyIdx:]...)
	return append(ordered, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) checkSplash(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.PeakSpeed
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.PeakSpeed > avg*3.0 && stats.PeakSpeed > 50 {
		return &Bookmark{
			Type:        BookmarkSplash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Peak speed %.1f is %.1fx average (%.1f)", stats.PeakSpeed, stats.PeakSpeed/avg, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkCompression(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.DensityP90
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.DensityP90 > avg*2.0 {
		return &Bookmark{
			Type:        BookmarkCompression,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("P90 density %.4f is %.1fx average (%.4f)", stats.DensityP90, stats.DensityP90/avg, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkGuardSpike(stats WindowStats) *Bookmark {
	if stats.Guards == 0 {
		return nil
	}
	for _, h := range bd.getHistory() {
		if h.Guards > 0 {
			return nil
		}
	}
	return &Bookmark{
		Type:        BookmarkGuardSpike,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d numerical guards fired over %d steps", stats.Guards, stats.Steps),
	}
}

func (bd *BookmarkDetector) checkSettled(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	recent := append(history[max(0, len(history)-3):len(history):len(history)], stats)

	var sum float64
	for _, h := range recent {
		sum += h.KineticEnergy
	}
	mean := sum / float64(len(recent))

	var variance float64
	for _, h := range recent {
		d := h.KineticEnergy - mean
		variance += d * d
	}
	variance /= float64(len(recent))

	// CV^2 < 0.01 means CV < 0.1
	if mean > 0 && variance/(mean*mean) < 0.01 {
		bd.settledWindows++
	} else {
		bd.settledWindows = 0
	}

	if bd.settledWindows == 5 { // trigger exactly once per settled run
		return &Bookmark{
			Type:        BookmarkSettled,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Kinetic energy steady at %.1f over 5+ windows", mean),
		}
	}

	return nil
}
