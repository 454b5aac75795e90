package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/sphtank/config"
	"github.com/pthm-cable/sphtank/sph"
)

func testSim(t *testing.T) (*sph.Simulation, sph.Params) {
	t.Helper()
	cfg, err := config.Defaults()
	if err != nil {
		t.Fatalf("Defaults failed: %v", err)
	}
	params := sph.ParamsFromConfig(cfg)
	sim, err := sph.New(params, sph.Setup{Count: 50, Layout: config.LayoutGrid, Seed: 3, Workers: 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(sim.Close)
	return sim, params
}

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	sim, params := testSim(t)
	for i := 0; i < 5; i++ {
		sim.Step(params, sph.Interaction{})
	}

	snapshot := NewSnapshot(sim, params.Tank, 3, &Bookmark{
		Type:        BookmarkSplash,
		Tick:        sim.Tick(),
		Description: "Test bookmark",
	})

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.Version != SnapshotVersion {
		t.Errorf("Version mismatch: got %d, want %d", loaded.Version, SnapshotVersion)
	}
	if loaded.Tick != 5 {
		t.Errorf("Tick mismatch: got %d, want 5", loaded.Tick)
	}
	if len(loaded.Particles) != sim.Len() {
		t.Errorf("Particle count mismatch: got %d, want %d", len(loaded.Particles), sim.Len())
	}
	if loaded.Bookmark == nil {
		t.Error("Bookmark not loaded")
	} else if loaded.Bookmark.Type != BookmarkSplash {
		t.Errorf("Bookmark type mismatch: got %s, want %s", loaded.Bookmark.Type, BookmarkSplash)
	}

	// Restoring into a fresh simulation reproduces the state exactly
	other, _ := testSim(t)
	if err := loaded.Restore(other, params, sph.Setup{Workers: 1}); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if other.Tick() != sim.Tick() {
		t.Errorf("restored tick = %d, want %d", other.Tick(), sim.Tick())
	}
	for i := range sim.Particles.Position {
		if other.Particles.Position[i] != sim.Particles.Position[i] {
			t.Fatalf("particle %d position %v, want %v", i, other.Particles.Position[i], sim.Particles.Position[i])
		}
		if other.Particles.Velocity[i] != sim.Particles.Velocity[i] {
			t.Fatalf("particle %d velocity %v, want %v", i, other.Particles.Velocity[i], sim.Particles.Velocity[i])
		}
	}
}

func TestSnapshotRestoreRejectsOutsideTank(t *testing.T) {
	sim, params := testSim(t)

	snapshot := &Snapshot{
		Version:   SnapshotVersion,
		Particles: []ParticleState{{X: -500, Y: 10}},
	}
	if err := snapshot.Restore(sim, params, sph.Setup{}); err == nil {
		t.Error("expected error for particle outside tank")
	}

	snapshot.Version = SnapshotVersion + 1
	snapshot.Particles = []ParticleState{{X: params.Tank.Center().X, Y: params.Tank.Center().Y}}
	if err := snapshot.Restore(sim, params, sph.Setup{}); err == nil {
		t.Error("expected error for unknown version")
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	// Test with bookmark
	snapshot := &Snapshot{
		Version: SnapshotVersion,
		Tick:    5000,
		Bookmark: &Bookmark{
			Type: BookmarkGuardSpike,
			Tick: 5000,
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected := filepath.Join(tmpDir, "snapshot_5000_guard_spike.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}

	// Test without bookmark
	snapshotNoBookmark := &Snapshot{
		Version:   SnapshotVersion,
		Tick:      3000,
		Particles: []ParticleState{{X: 1, Y: 2}},
	}

	path, err = SaveSnapshot(snapshotNoBookmark, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected = filepath.Join(tmpDir, "snapshot_3000.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if got := loaded.Particles[0]; got.X != 1 || got.Y != 2 {
		t.Errorf("particle = %+v, want (1, 2)", got)
	}
}
