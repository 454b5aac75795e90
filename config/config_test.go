package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("embedded defaults invalid: %v", err)
	}

	// Auto-sized tank fills the screen minus origin and margin
	if want := float64(cfg.Screen.Width) - cfg.Tank.X - tankMargin; cfg.Derived.TankW != want {
		t.Errorf("TankW = %v, want %v", cfg.Derived.TankW, want)
	}
	if want := float64(cfg.Screen.Height) - cfg.Tank.Y - tankMargin; cfg.Derived.TankH != want {
		t.Errorf("TankH = %v, want %v", cfg.Derived.TankH, want)
	}

	// Mass 0 means particle area
	r := cfg.Fluid.ParticleRadius
	if math.Abs(cfg.Derived.Mass-math.Pi*r*r) > 1e-9 {
		t.Errorf("Mass = %v, want pi*r^2", cfg.Derived.Mass)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	data := []byte("fluid:\n  gravity: -50\n  mass: 2\nspawn:\n  count: 42\n  layout: random\ntank:\n  width: 300\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Fluid.Gravity != -50 {
		t.Errorf("Gravity = %v, want -50", cfg.Fluid.Gravity)
	}
	if cfg.Spawn.Count != 42 || cfg.Spawn.Layout != LayoutRandom {
		t.Errorf("Spawn = %+v", cfg.Spawn)
	}
	if cfg.Derived.Mass != 2 {
		t.Errorf("Mass = %v, want 2", cfg.Derived.Mass)
	}
	if cfg.Derived.TankW != 300 {
		t.Errorf("TankW = %v, want 300", cfg.Derived.TankW)
	}

	// Fields absent from the file keep their defaults
	defaults, _ := Defaults()
	if cfg.Fluid.SmoothingRadius != defaults.Fluid.SmoothingRadius {
		t.Errorf("SmoothingRadius = %v, want default %v", cfg.Fluid.SmoothingRadius, defaults.Fluid.SmoothingRadius)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"zero count", "spawn:\n  count: 0\n", ErrInvalidCount},
		{"negative radius", "fluid:\n  smoothing_radius: -1\n", ErrInvalidRadius},
		{"negative mass", "fluid:\n  mass: -3\n", ErrInvalidMass},
		{"tiny tank", "tank:\n  width: 8\n", ErrTankTooSmall},
		{"unknown layout", "spawn:\n  layout: hex\n", ErrInvalidLayout},
		{"zero dt", "integration:\n  dt: 0\n", ErrInvalidDT},
		{"zero epsilon", "integration:\n  boundary_epsilon: 0\n", ErrInvalidEpsilon},
		{"restitution above one", "integration:\n  restitution: 1.2\n", ErrInvalidRestitution},
		{"negative restitution", "integration:\n  restitution: -0.1\n", ErrInvalidRestitution},
		{"tank within epsilon", "fluid:\n  particle_radius: 5\ntank:\n  width: 10.001\n", ErrTankTooSmall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.Is(err, tt.want) {
				t.Errorf("Load error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSubstepsClamped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("integration:\n  substeps: 0\nstream:\n  every: -2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Integration.Substeps != 1 || cfg.Stream.Every != 1 {
		t.Errorf("Substeps = %d, Every = %d, want 1, 1", cfg.Integration.Substeps, cfg.Stream.Every)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, _ := Defaults()
	cfg.Fluid.PressureFactor = 1234
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Fluid.PressureFactor != 1234 {
		t.Errorf("PressureFactor = %v, want 1234", loaded.Fluid.PressureFactor)
	}
	if loaded.Derived != cfg.Derived {
		t.Errorf("Derived = %+v, want %+v", loaded.Derived, cfg.Derived)
	}
}

func TestInitAndCfg(t *testing.T) {
	if err := Init(""); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if Cfg().Spawn.Count <= 0 {
		t.Error("expected positive default count")
	}
}
