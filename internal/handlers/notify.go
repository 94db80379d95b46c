// internal/handlers/notify.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/streamify/connect/internal/middleware"
	"github.com/streamify/connect/internal/models"
)

// NotifyEvent is pushed to a user's open notification sockets when a
// friend request involving them changes.
type NotifyEvent struct {
	Type    string                `json:"type"`
	Request *models.FriendRequest `json:"request"`
}

// NotifyHub tracks open notification sockets per user.
type NotifyHub struct {
	mu    sync.Mutex
	conns map[uuid.UUID][]*websocket.Conn
}

func NewNotifyHub() *NotifyHub {
	return &NotifyHub{
		conns: make(map[uuid.UUID][]*websocket.Conn),
	}
}

func (h *NotifyHub) add(userID uuid.UUID, c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[userID] = append(h.conns[userID], c)
}

func (h *NotifyHub) remove(userID uuid.UUID, c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.conns[userID]
	for i, cc := range conns {
		if cc == c {
			h.conns[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.conns[userID]) == 0 {
		delete(h.conns, userID)
	}
}

// Notify delivers ev to every open socket of userID. Best-effort: a user
// with no open sockets simply misses the push and sees the change on the
// next feed fetch.
func (h *NotifyHub) Notify(userID uuid.UUID, ev NotifyEvent) {
	h.mu.Lock()
	conns := append([]*websocket.Conn(nil), h.conns[userID]...)
	h.mu.Unlock()

	if len(conns) == 0 {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	for _, c := range conns {
		go func(c *websocket.Conn) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = c.Write(ctx, websocket.MessageText, data)
		}(c)
	}
}

// NotificationsWSHandler upgrades to a WebSocket and streams friend
// events to the authenticated caller until the client disconnects.
func NotificationsWSHandler(logger *logrus.Logger, hub *NotifyHub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"notify"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)
		hub.add(userID, c)
		defer hub.remove(userID, c)

		// The notification socket is push-only; drain client frames until
		// the connection drops.
		ctx := r.Context()
		for {
			if _, _, err := c.Read(ctx); err != nil {
				middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
				c.Close(websocket.StatusNormalClosure, "bye")
				return
			}
		}
	}
}
