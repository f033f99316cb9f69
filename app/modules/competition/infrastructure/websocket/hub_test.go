package competitionws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	r := chi.NewRouter()
	r.Get("/ws/competitions/{competitionID}", hub.ServeWS)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, competitionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/competitions/" + competitionID
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_BroadcastReachesOnlyTheCompetitionRoom(t *testing.T) {
	hub, srv := startHub(t)
	watched := uuid.New()
	other := uuid.New()

	conn := dial(t, srv, watched.String())
	otherConn := dial(t, srv, other.String())
	require.Eventually(t, func() bool {
		return hub.RoomSize(RoomFor(watched)) == 1 && hub.RoomSize(RoomFor(other)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	delivered := hub.Broadcast(watched, MessageRoundAssigned, map[string]int{"roundNumber": 3})
	assert.Equal(t, 1, delivered)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, body, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]int `json:"payload"`
		RoomID  string         `json:"room_id"`
	}
	require.NoError(t, json.Unmarshal(body, &msg))
	assert.Equal(t, MessageRoundAssigned, msg.Type)
	assert.Equal(t, 3, msg.Payload["roundNumber"])
	assert.Equal(t, "competition_"+watched.String(), msg.RoomID)

	require.NoError(t, otherConn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = otherConn.ReadMessage()
	assert.Error(t, err)
}

func TestHub_ClientLeavesRoomOnDisconnect(t *testing.T) {
	hub, srv := startHub(t)
	id := uuid.New()

	conn := dial(t, srv, id.String())
	require.Eventually(t, func() bool { return hub.RoomSize(RoomFor(id)) == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.RoomSize(RoomFor(id)) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RejectsInvalidCompetitionID(t *testing.T) {
	_, srv := startHub(t)

	resp, err := http.Get(srv.URL + "/ws/competitions/not-a-uuid")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHub_BroadcastToEmptyRoom(t *testing.T) {
	hub, _ := startHub(t)
	assert.Zero(t, hub.Broadcast(uuid.New(), MessageBracketUpdated, nil))
}
