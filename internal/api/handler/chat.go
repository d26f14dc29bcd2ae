package handler

import (
	"net/http"

	"mentorlink/backend/internal/chathub"

	"github.com/gin-gonic/gin"
)

type sendMessageBody struct {
	Content string `json:"content"`
}

func (h *Handler) ListRooms(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	rooms, err := h.Gateway.Summaries(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	if rooms == nil {
		rooms = []chathub.RoomSummary{}
	}
	c.JSON(http.StatusOK, rooms)
}

// CreateRoomFromRequest opens (or returns) the room of an accepted request
// the caller can see.
func (h *Handler) CreateRoomFromRequest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "requestId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	req, err := h.Mentorship.Get(ctx, user, id)
	if err != nil {
		respondError(c, err)
		return
	}
	room, err := h.Gateway.Rooms.CreateFromAcceptedRequest(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":            room.ID,
		"roomName":      room.RoomName(),
		"studentId":     room.StudentID,
		"alumniId":      room.AlumniID,
		"createdAt":     room.CreatedAt,
		"lastMessageAt": room.LastMessageAt,
		"isActive":      room.IsActive,
	})
}

func (h *Handler) History(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	roomID, ok := parseID(c, "roomId")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return
	}
	history, err := h.Gateway.History(c.Request.Context(), roomID, user.ID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// SendMessage is the HTTP twin of a websocket message frame and answers with
// the same envelope. Blank content is accepted and dropped.
func (h *Handler) SendMessage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	roomID, ok := parseID(c, "roomId")
	if !ok {
		return
	}
	var in sendMessageBody
	if !bindJSON(c, &in) {
		return
	}
	msg, err := h.Gateway.Send(c.Request.Context(), roomID, user.ID, in.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	if msg == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, h.Gateway.Envelope(c.Request.Context(), msg))
}

func (h *Handler) MarkRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	roomID, ok := parseID(c, "roomId")
	if !ok {
		return
	}
	n, err := h.Gateway.MarkRead(c.Request.Context(), roomID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roomId": roomID, "marked": n})
}

func (h *Handler) RoomUnreadCount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	roomID, ok := parseID(c, "roomId")
	if !ok {
		return
	}
	n, err := h.Gateway.UnreadForRoom(c.Request.Context(), roomID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roomId": roomID, "unreadCount": n})
}

func (h *Handler) TotalUnreadCount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	n, err := h.Gateway.Unread.CountTotal(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unreadCount": n})
}
