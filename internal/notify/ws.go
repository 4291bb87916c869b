package notify

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"inreader-backend/internal/shared/metrics"
	"inreader-backend/internal/shared/server/middleware"
	"inreader-backend/internal/shared/server/respond"
	"inreader-backend/internal/shared/telemetry"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 4 << 10
	sendBuffer = 16
)

// Socket events besides transcriptionUpdate.
const (
	EventJoin   = "join"
	EventJoined = "joined"
	EventError  = "error"
)

// Handler upgrades authenticated requests to websocket connections.
type Handler struct {
	Hub      *Hub
	Verifier middleware.TokenVerifier
	Metrics  *metrics.Metrics
	Upgrader websocket.Upgrader
}

// NewHandler constructs a Handler accepting the given origins ("*" for any).
func NewHandler(hub *Hub, verifier middleware.TokenVerifier, m *metrics.Metrics, allowedOrigins []string) *Handler {
	return &Handler{
		Hub:      hub,
		Verifier: verifier,
		Metrics:  m,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(middleware.NewOriginPolicy(allowedOrigins)),
		},
	}
}

// RegisterRoutes attaches the socket endpoint.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws", h.serve)
}

func (h *Handler) serve(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		token, _ = middleware.BearerToken(c.GetHeader("Authorization"))
	}
	if token == "" {
		respond.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	claims, err := h.Verifier.Verify(token)
	if err != nil {
		respond.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		telemetry.Warn("ws.upgrade_failed", map[string]any{"error": err})
		return
	}
	client := &client{conn: conn, send: make(chan Frame, sendBuffer), userID: claims.Subject}

	h.Metrics.ConnectionOpened()
	telemetry.Info("ws.connected", map[string]any{"user_id": client.userID})

	go client.writePump()
	h.readPump(client)
}

type joinData struct {
	UserID string `json:"userId"`
}

type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (h *Handler) readPump(cl *client) {
	defer func() {
		h.Hub.Leave(cl)
		cl.close()
		h.Metrics.ConnectionClosed()
		telemetry.Info("ws.disconnected", map[string]any{"user_id": cl.userID})
	}()

	cl.conn.SetReadLimit(maxMessage)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inbound
		if err := cl.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				telemetry.Warn("ws.read_failed", map[string]any{"user_id": cl.userID, "error": err})
			}
			return
		}
		switch msg.Event {
		case EventJoin:
			var data joinData
			_ = json.Unmarshal(msg.Data, &data)
			if data.UserID == "" {
				data.UserID = cl.userID
			}
			if data.UserID != cl.userID {
				cl.Send(errorFrame("You can only join your own room"))
				continue
			}
			h.Hub.Join(data.UserID, cl)
			cl.Send(Frame{Event: EventJoined, Data: joinData{UserID: data.UserID}})
		default:
			cl.Send(errorFrame("Unknown event"))
		}
	}
}

func errorFrame(message string) Frame {
	return Frame{Event: EventError, Data: map[string]string{"message": message}}
}

type client struct {
	conn   *websocket.Conn
	send   chan Frame
	userID string

	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

// Send queues f without blocking; a full buffer drops the frame.
func (cl *client) Send(f Frame) bool {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	if cl.closed {
		return false
	}
	select {
	case cl.send <- f:
		return true
	default:
		telemetry.Warn("ws.frame_dropped", map[string]any{"user_id": cl.userID, "event": f.Event})
		return false
	}
}

func (cl *client) close() {
	cl.once.Do(func() {
		cl.mu.Lock()
		cl.closed = true
		close(cl.send)
		cl.mu.Unlock()
	})
}

func (cl *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()
	for {
		select {
		case f, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteJSON(f); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// non-browser clients send no Origin and are let through
func checkOrigin(policy middleware.OriginPolicy) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || policy.Allows(origin)
	}
}
