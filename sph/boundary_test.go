package sph

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"
)

var testTank = Tank{Origin: r2.Vec{X: 0, Y: 0}, Extent: r2.Vec{X: 100, Y: 60}}

func TestCollideExactContact(t *testing.T) {
	const radius, eps = 5.0, DefaultBoundaryEpsilon
	// |x - 50| + 5 == 50 exactly
	pos := r2.Vec{X: 95, Y: 30}
	vel := r2.Vec{X: 10, Y: 1}

	gotPos, gotVel, hit := Collide(pos, vel, testTank, radius, DefaultRestitution, eps)

	assert.True(t, hit)
	assert.InDelta(t, -7, gotVel.X, 1e-12, "reflected and damped")
	assert.Equal(t, 1.0, gotVel.Y, "untouched axis")
	assert.LessOrEqual(t, gotPos.X+radius, testTank.Extent.X-eps+1e-9, "inside by at least eps")
	assert.Equal(t, 30.0, gotPos.Y)
}

func TestCollideInsideIsNoop(t *testing.T) {
	pos := r2.Vec{X: 50, Y: 30}
	vel := r2.Vec{X: -3, Y: 8}
	gotPos, gotVel, hit := Collide(pos, vel, testTank, 5, DefaultRestitution, DefaultBoundaryEpsilon)
	assert.False(t, hit)
	assert.Equal(t, pos, gotPos)
	assert.Equal(t, vel, gotVel)
}

func TestCollideCorner(t *testing.T) {
	gotPos, gotVel, hit := Collide(r2.Vec{X: -10, Y: 70}, r2.Vec{X: -4, Y: 6}, testTank, 2, 0.5, 0.01)
	assert.True(t, hit)
	assert.InDelta(t, 2.01, gotPos.X, 1e-12)
	assert.InDelta(t, 57.99, gotPos.Y, 1e-12)
	assert.InDelta(t, 2, gotVel.X, 1e-12)
	assert.InDelta(t, -3, gotVel.Y, 1e-12)
}

func TestCollideIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		pos := r2.Vec{X: rng.Float64()*200 - 50, Y: rng.Float64()*160 - 50}
		vel := r2.Vec{X: rng.NormFloat64() * 20, Y: rng.NormFloat64() * 20}

		p1, v1, _ := Collide(pos, vel, testTank, 3, DefaultRestitution, DefaultBoundaryEpsilon)
		p2, v2, hit := Collide(p1, v1, testTank, 3, DefaultRestitution, DefaultBoundaryEpsilon)

		assert.False(t, hit, "second pass clamped %v", p1)
		assert.Equal(t, p1, p2)
		assert.Equal(t, v1, v2)
	}
}

func TestCollideNarrowestValidTank(t *testing.T) {
	const radius, eps = 1.0, 0.001
	narrow := Tank{Extent: r2.Vec{X: 2*(radius+eps) + 0.001, Y: 50}}
	params := smallParams()
	params.Tank, params.ParticleRadius, params.BoundaryEpsilon = narrow, radius, eps
	assert.NoError(t, params.Validate())

	p1, v1, hit := Collide(r2.Vec{X: 1.9, Y: 25}, r2.Vec{X: 3}, narrow, radius, DefaultRestitution, eps)
	assert.True(t, hit)
	assert.Greater(t, p1.X, narrow.Center().X, "clamp must stay on the wall's side")

	p2, v2, hit := Collide(p1, v1, narrow, radius, DefaultRestitution, eps)
	assert.False(t, hit)
	assert.Equal(t, p1, p2)
	assert.Equal(t, v1, v2)
}

func TestCollideZeroEpsilonRejected(t *testing.T) {
	params := smallParams()
	params.BoundaryEpsilon = 0
	assert.ErrorIs(t, params.Validate(), ErrInvalidEpsilon)
}
