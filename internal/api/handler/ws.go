package handler

import (
	"mentorlink/backend/internal/apperr"
	"mentorlink/backend/internal/chathub"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ServeWebSocket upgrades /ws/chat/:roomId. Failures after the upgrade are
// reported as close frames (4403 access denied, 4404 not found).
func (h *Handler) ServeWebSocket(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	roomID, ok := parseID(c, "roomId")
	if !ok {
		return
	}

	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := chathub.NewWebSocketClient(conn, roomID, user.ID, h.Gateway, h.logger)
	if err := h.Gateway.Connect(c.Request.Context(), roomID, user.ID, client); err != nil {
		code, reason := apperr.CloseCode(err)
		h.log.WithError(err).WithFields(logrus.Fields{"room_id": roomID, "user_id": user.ID, "close_code": code}).
			Info("websocket rejected")
		chathub.RejectConn(conn, code, reason)
		return
	}
	client.Run()
}
