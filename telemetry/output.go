package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/sphtank/config"
)

// Output file names inside a run directory.
const (
	TelemetryFile = "telemetry.csv"
	PerfFile      = "perf.csv"
	BookmarkFile  = "bookmarks.csv"
	ConfigFile    = "config.yaml"
	SnapshotDir   = "snapshots"
)

// csvLog appends gocsv records to one file, writing the header with the first row.
type csvLog struct {
	name   string
	f      *os.File
	headed bool
}

func openCSV(dir, name string) (*csvLog, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvLog{name: name, f: f}, nil
}

// append writes records, which must be a slice of a gocsv-tagged struct.
func (l *csvLog) append(records any) error {
	var err error
	if l.headed {
		err = gocsv.MarshalWithoutHeaders(records, l.f)
	} else {
		err = gocsv.Marshal(records, l.f)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", l.name, err)
	}
	l.headed = true
	return nil
}

func (l *csvLog) close() error {
	if l == nil || l.f == nil {
		return nil
	}
	return l.f.Close()
}

// OutputManager writes a run directory: window stats, perf samples and bookmarks as
// CSV, the effective config as YAML, and snapshots under snapshots/.
// A nil manager accepts every call and writes nothing.
type OutputManager struct {
	dir       string
	telemetry *csvLog
	perf      *csvLog
	bookmarks *csvLog
}

// NewOutputManager creates dir and opens its CSV files. Returns nil if dir is empty.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	for _, slot := range []struct {
		log  **csvLog
		name string
	}{
		{&om.telemetry, TelemetryFile},
		{&om.perf, PerfFile},
		{&om.bookmarks, BookmarkFile},
	} {
		l, err := openCSV(dir, slot.name)
		if err != nil {
			om.Close()
			return nil, err
		}
		*slot.log = l
	}
	return om, nil
}

// WriteConfig saves cfg as config.yaml so the run can be reproduced with -config.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, ConfigFile))
}

// WriteTelemetry appends one window to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return om.telemetry.append([]WindowStats{stats})
}

// WritePerf appends one perf sample, tagged with the window's end tick, to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int64) error {
	if om == nil {
		return nil
	}
	return om.perf.append([]PerfStatsCSV{stats.ToCSV(windowEnd)})
}

// WriteBookmark appends b to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.append([]Bookmark{b})
}

// WriteSnapshot saves snapshot under the run's snapshots directory and returns its path.
func (om *OutputManager) WriteSnapshot(snapshot *Snapshot) (string, error) {
	if om == nil {
		return "", nil
	}
	return SaveSnapshot(snapshot, filepath.Join(om.dir, SnapshotDir))
}

// Dir returns the run directory, or "" for a nil manager.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes every open file and reports all failures.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return errors.Join(om.telemetry.close(), om.perf.close(), om.bookmarks.close())
}
