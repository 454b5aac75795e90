package sph

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Collide clamps a particle of the given radius inside the tank. On each axis where
// the particle's surface touches or crosses the wall, the velocity component is
// reflected and scaled by restitution and the position is pulled eps inside the wall.
// The second return reports whether any axis was clamped.
//
// Applying Collide to its own output is a no-op: a clamped particle sits eps away
// from the wall, which no longer satisfies the contact test.
func Collide(pos, vel r2.Vec, tank Tank, radius, restitution, eps float64) (r2.Vec, r2.Vec, bool) {
	c := tank.Center()
	half := tank.HalfExtent()

	var hit bool
	pos.X, vel.X, hit = collideAxis(pos.X, vel.X, c.X, half.X, radius, restitution, eps)
	var hitY bool
	pos.Y, vel.Y, hitY = collideAxis(pos.Y, vel.Y, c.Y, half.Y, radius, restitution, eps)
	return pos, vel, hit || hitY
}

func collideAxis(x, v, center, half, radius, restitution, eps float64) (float64, float64, bool) {
	ref := x - center
	if math.Abs(ref)+radius < half {
		return x, v, false
	}
	sign := 1.0
	if ref < 0 {
		sign = -1
	}
	return center + sign*(half-radius-eps), v * -restitution, true
}
