package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphtank/sph"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the particle state needed to resume a run.
type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`

	TankX      float64 `json:"tank_x"`
	TankY      float64 `json:"tank_y"`
	TankWidth  float64 `json:"tank_width"`
	TankHeight float64 `json:"tank_height"`

	Tick    int64   `json:"tick"`
	SimTime float64 `json:"sim_time"`

	Particles []ParticleState `json:"particles"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// ParticleState holds one particle's kinematic state. Fields are recomputed on load.
type ParticleState struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	VelX float64 `json:"vel_x"`
	VelY float64 `json:"vel_y"`
}

// NewSnapshot captures the simulation's current particle state.
func NewSnapshot(sim *sph.Simulation, tank sph.Tank, seed int64, bm *Bookmark) *Snapshot {
	p := sim.Particles
	states := make([]ParticleState, p.Len())
	for i := range states {
		states[i] = ParticleState{
			X:    p.Position[i].X,
			Y:    p.Position[i].Y,
			VelX: p.Velocity[i].X,
			VelY: p.Velocity[i].Y,
		}
	}
	return &Snapshot{
		Version:    SnapshotVersion,
		Seed:       seed,
		TankX:      tank.Origin.X,
		TankY:      tank.Origin.Y,
		TankWidth:  tank.Extent.X,
		TankHeight: tank.Extent.Y,
		Tick:       sim.Tick(),
		SimTime:    sim.Time(),
		Particles:  states,
		Bookmark:   bm,
	}
}

// Restore loads the snapshot into sim. The particles must fit params.Tank.
func (s *Snapshot) Restore(sim *sph.Simulation, params sph.Params, setup sph.Setup) error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("snapshot version %d, want %d", s.Version, SnapshotVersion)
	}

	positions := make([]r2.Vec, len(s.Particles))
	velocities := make([]r2.Vec, len(s.Particles))
	for i, ps := range s.Particles {
		positions[i] = r2.Vec{X: ps.X, Y: ps.Y}
		velocities[i] = r2.Vec{X: ps.VelX, Y: ps.VelY}
		if !params.Tank.Contains(positions[i]) {
			return fmt.Errorf("snapshot particle %d at (%g, %g) outside tank", i, ps.X, ps.Y)
		}
	}

	if err := sim.Restore(params, setup, positions, velocities, s.Tick, s.SimTime); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	return nil
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		// Sanitize bookmark type for filename
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
