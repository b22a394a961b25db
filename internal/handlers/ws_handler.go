package handlers

import (
	"context"
	"net/http"

	"github.com/Dias221467/Activity_Notifier/internal/realtime"
	jwtutil "github.com/Dias221467/Activity_Notifier/pkg/jwt"
	"github.com/Dias221467/Activity_Notifier/pkg/logger"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	Hub       *realtime.Hub
	JWTSecret string
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewWSHandler(hub *realtime.Hub, jwtSecret string) *WSHandler {
	return &WSHandler{Hub: hub, JWTSecret: jwtSecret}
}

// GET /ws?token=<jwt>&room=<origin page>
//
// Browsers cannot set headers on a websocket handshake, so the token comes in
// the query string. The socket is keyed by the email in the token.
func (h *WSHandler) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}
	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		logger.Log.WithError(err).Warn("WebSocket auth failed")
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := h.Hub.Register(r.Context(), claims.Email, r.URL.Query().Get("room"), conn)
	conn.SetPongHandler(func(string) error {
		c.Touch()
		return nil
	})
	defer h.Hub.Unregister(context.Background(), c)

	// the client only listens; reads keep control frames flowing
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.WithError(err).WithField("user_id", claims.Email).Warn("WebSocket read error")
			}
			return
		}
		c.Touch()
	}
}
