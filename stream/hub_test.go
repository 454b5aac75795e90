package stream

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/sphtank/config"
	"github.com/pthm-cable/sphtank/sph"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func testSim(t *testing.T) (*sph.Simulation, sph.Params) {
	t.Helper()
	cfg, err := config.Defaults()
	require.NoError(t, err)
	params := sph.ParamsFromConfig(cfg)
	sim, err := sph.New(params, sph.Setup{Count: 50, Layout: config.LayoutGrid, Seed: 1})
	require.NoError(t, err)
	t.Cleanup(sim.Close)
	return sim, params
}

func TestNewFrameCopiesParticles(t *testing.T) {
	sim, params := testSim(t)
	sim.Step(params, sph.Interaction{})

	f := NewFrame(sim, params)
	assert.Equal(t, int64(1), f.Tick)
	assert.Equal(t, 50, f.Particles)
	require.Len(t, f.X, 50)
	assert.Equal(t, float32(sim.Particles.Position[7].X), f.X[7])
	assert.Equal(t, float32(sim.Particles.Density[7]), f.Density[7])
	assert.Equal(t, params.Tank.Extent.X, f.Tank[2])
}

func TestHubBroadcastsFrames(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	sim, params := testSim(t)
	want := NewFrame(sim, params)
	require.NoError(t, hub.Publish(want))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Frame
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, want.Particles, got.Particles)
	assert.Equal(t, want.X, got.X)
	assert.Equal(t, want.Density, got.Density)
}

func TestHubForgetsClosedClients(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 5*time.Millisecond)

	// Publishing with nobody connected is fine
	assert.NoError(t, hub.Publish(Frame{}))
}

func TestHubServesViewer(t *testing.T) {
	srv := httptest.NewServer(NewHub().Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "WebSocket")

	missing, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}
