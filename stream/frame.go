package stream

import "github.com/pthm-cable/sphtank/sph"

// Frame is one published view of the particle set. Coordinates are in tank space
// (screen pixels); float32 halves the payload without visible loss.
type Frame struct {
	Tick      int64      `json:"tick"`
	Time      float64    `json:"time"`
	Tank      [4]float64 `json:"tank"` // x, y, width, height
	Target    float64    `json:"target_density"`
	X         []float32  `json:"x"`
	Y         []float32  `json:"y"`
	Density   []float32  `json:"density"`
	Particles int        `json:"particles"`
}

// NewFrame copies positions and densities out of sim.
func NewFrame(sim *sph.Simulation, params sph.Params) Frame {
	p := sim.Particles
	n := p.Len()
	f := Frame{
		Tick: sim.Tick(),
		Time: sim.Time(),
		Tank: [4]float64{
			params.Tank.Origin.X, params.Tank.Origin.Y,
			params.Tank.Extent.X, params.Tank.Extent.Y,
		},
		Target:    params.TargetDensity,
		X:         make([]float32, n),
		Y:         make([]float32, n),
		Density:   make([]float32, n),
		Particles: n,
	}
	for i := 0; i < n; i++ {
		f.X[i] = float32(p.Position[i].X)
		f.Y[i] = float32(p.Position[i].Y)
		f.Density[i] = float32(p.Density[i])
	}
	return f
}
