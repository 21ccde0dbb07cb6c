package ws

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/medwatch/go-vitals-alerts/internal/broadcast"
	"github.com/medwatch/go-vitals-alerts/internal/directory"
)

const EventUserStatus = "user_status_update"

type statusPayload struct {
	UserID string `json:"user_id"`
	Online bool   `json:"online"`
}

// Handler upgrades HTTP requests into live sessions and keeps the
// Subscription Directory in step with connects and disconnects.
type Handler struct {
	dir      *directory.Directory
	b        *broadcast.Broadcaster
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*Client]struct{}
}

func NewHandler(dir *directory.Directory, b *broadcast.Broadcaster) *Handler {
	return &Handler{
		dir: dir,
		b:   b,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin policy is enforced upstream alongside authentication.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*Client]struct{}),
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", h.serve)
}

func (h *Handler) serve(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	client := newClient(userID, conn)

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	h.dir.Join(userID, client)
	slog.Info("session connected", "user_id", userID)
	h.b.DeliverAll(EventUserStatus, statusPayload{UserID: userID, Online: true})

	go client.writePump()
	client.readPump()

	// Leave must complete before anyone can observe the disconnect, so a
	// broadcast racing the close never resolves this session again.
	h.dir.Leave(client)
	client.close()

	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()

	slog.Info("session disconnected", "user_id", userID)
	h.b.DeliverAll(EventUserStatus, statusPayload{UserID: userID, Online: false})
}

// CloseAll tears down every live session, letting pumps exit gracefully
// during shutdown.
func (h *Handler) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		h.dir.Leave(client)
		client.close()
		delete(h.clients, client)
	}
}
