package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edurelay/liveclass/internal/app"
	"github.com/edurelay/liveclass/internal/config"
	"github.com/edurelay/liveclass/internal/domain"
	"github.com/edurelay/liveclass/internal/signal"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type nopConn struct{ id string }

func (c *nopConn) ID() string { return c.id }

func (c *nopConn) TrySend([]byte) error { return nil }

func (c *nopConn) Close() error { return nil }

func testRouter(reg *app.RoomRegistry) *gin.Engine {
	cfg := &config.Config{
		Mode:       "release",
		Secret:     "test-secret",
		ReadLimit:  1 << 20,
		PingPeriod: 15 * time.Second,
		SendBuffer: 8,
		ICEServers: []config.ICEServer{
			{URLs: []string{"stun:stun.example.org:3478"}},
		},
	}
	rt := signal.NewRouter(reg, nil, nil)
	srv := signal.NewServer(rt, cfg.ReadLimit, cfg.PingPeriod, cfg.SendBuffer)
	return SetupRouter(cfg, reg, srv)
}

func TestHealthz(t *testing.T) {
	r := testRouter(app.NewRoomRegistry())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRoomStats(t *testing.T) {
	reg := app.NewRoomRegistry()
	reg.AddParticipant("algebra-7", &app.Member{
		Participant: domain.Participant{UserID: "u1", Role: domain.RoleInstructor},
		Conn:        &nopConn{id: "c1"},
	})
	r := testRouter(reg)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Rooms []app.RoomStat `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Rooms, 1)
	assert.Equal(t, "algebra-7", body.Rooms[0].RoomID)
	assert.Equal(t, 1, body.Rooms[0].Participants)
}

func TestWebRTCConfig(t *testing.T) {
	r := testRouter(app.NewRoomRegistry())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/webrtc/config", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		ICEServers []struct {
			URLs []string `json:"urls"`
		} `json:"iceServers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.ICEServers, 1)
	assert.Equal(t, []string{"stun:stun.example.org:3478"}, body.ICEServers[0].URLs)
}
