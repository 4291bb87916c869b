package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inreader-backend/internal/shared/auth"
	"inreader-backend/internal/shared/metrics"
)

func newSocketServer(t *testing.T) (*httptest.Server, *Hub, *auth.Issuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	issuer, err := auth.NewIssuer("ws-secret", time.Hour)
	require.NoError(t, err)
	hub := NewHub()
	reg := prometheus.NewRegistry()

	r := gin.New()
	NewHandler(hub, issuer, metrics.New(reg, reg), []string{"*"}).RegisterRoutes(r.Group(""))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub, issuer
}

func dial(t *testing.T, srv *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	return websocket.DefaultDialer.Dial(url, nil)
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame map[string]any
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestSocketRejectsMissingToken(t *testing.T) {
	srv, _, _ := newSocketServer(t)

	_, resp, err := dial(t, srv, "")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSocketJoinAndReceiveUpdate(t *testing.T) {
	srv, hub, issuer := newSocketServer(t)
	token, err := issuer.Sign("user-a", "a@example.com")
	require.NoError(t, err)

	conn, _, err := dial(t, srv, token)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(Frame{Event: EventJoin, Data: map[string]string{"userId": "user-a"}}))
	joined := readFrame(t, conn)
	assert.Equal(t, EventJoined, joined["event"])

	require.NoError(t, hub.Publish(context.Background(), "user-a", Update{Status: StatusDone, DocumentID: "doc-1"}))
	frame := readFrame(t, conn)
	assert.Equal(t, EventTranscriptionUpdate, frame["event"])
	data, ok := frame["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "DONE", data["status"])
	assert.Equal(t, "doc-1", data["documentId"])
}

func TestSocketRefusesForeignRoom(t *testing.T) {
	srv, hub, issuer := newSocketServer(t)
	token, err := issuer.Sign("user-a", "")
	require.NoError(t, err)

	conn, _, err := dial(t, srv, token)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(Frame{Event: EventJoin, Data: map[string]string{"userId": "user-b"}}))
	frame := readFrame(t, conn)
	assert.Equal(t, EventError, frame["event"])
	assert.Equal(t, 0, hub.RoomSize("user-b"))
}
