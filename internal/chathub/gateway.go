package chathub

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"mentorlink/backend/internal/apperr"
	"mentorlink/backend/internal/config"
	"mentorlink/backend/internal/models"
	"mentorlink/backend/internal/storage"

	"github.com/sirupsen/logrus"
)

// Gateway ties the registry, the message log and the hub together. It is
// the only component that both persists and broadcasts.
type Gateway struct {
	Storage  storage.Storage
	Rooms    *RoomRegistry
	Messages *MessageStore
	Unread   *UnreadCounter
	Hub      *ManagerService

	log *logrus.Entry
}

func NewGateway(s storage.Storage, hub *ManagerService, log *logrus.Logger) *Gateway {
	return &Gateway{
		Storage:  s,
		Rooms:    NewRoomRegistry(s, log),
		Messages: NewMessageStore(s),
		Unread:   NewUnreadCounter(s),
		Hub:      hub,
		log:      loggerOrDefault(log).WithField("component", "chat_gateway"),
	}
}

// Send persists content from senderID and pushes it to the other live
// connections of the room. Blank content is ignored: both results are nil.
func (g *Gateway) Send(ctx context.Context, roomID, senderID uint, content string) (*models.Message, error) {
	room, err := g.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(content) > config.MaxMessageLength {
		return nil, apperr.Validation("message exceeds %d characters", config.MaxMessageLength)
	}
	if !room.IsParticipant(senderID) {
		return nil, apperr.ErrNotParticipant
	}
	if !room.IsActive {
		return nil, apperr.InvalidState("chat room %d is inactive", room.ID)
	}

	msg, err := g.Messages.Append(ctx, room, senderID, content)
	if err != nil {
		return nil, err
	}

	n := g.Hub.Broadcast(room.ID, g.Envelope(ctx, msg), senderID)

	g.log.WithFields(logrus.Fields{"room_id": room.ID, "user_id": senderID, "message_id": msg.ID, "delivered": n}).
		Debug("message sent")
	return msg, nil
}

// Connect validates userID against the room, marks the history read and
// registers client with the hub. The caller owns client until this returns
// nil.
func (g *Gateway) Connect(ctx context.Context, roomID, userID uint, client Client) error {
	user, err := g.Storage.GetUserByID(ctx, userID)
	if err != nil {
		return notFound(err, "user %d", userID)
	}
	room, err := g.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.IsParticipant(user.ID) {
		return apperr.ErrNotParticipant
	}

	if _, err := g.Messages.MarkAllRead(ctx, room, user.ID); err != nil {
		g.log.WithError(err).WithFields(logrus.Fields{"room_id": roomID, "user_id": userID}).
			Warn("mark read on connect failed")
	}
	return g.Hub.Register(room, user, client)
}

func (g *Gateway) Disconnect(roomID, userID uint, client Client) {
	g.Hub.Unregister(roomID, userID, client)
}

// HandleInbound is the websocket read-pump callback. Failures are logged
// and never reach other connections.
func (g *Gateway) HandleInbound(ctx context.Context, roomID, userID uint, msg models.InboundMessage) {
	switch msg.Type {
	case "", models.EnvelopeMessage:
		if _, err := g.Send(ctx, roomID, userID, msg.Content); err != nil {
			g.log.WithError(err).WithFields(logrus.Fields{"room_id": roomID, "user_id": userID}).
				Warn("inbound message rejected")
		}
	default:
		g.log.WithField("type", msg.Type).Debug("ignoring inbound frame")
	}
}

// RoomSummary is one row of a user's room list.
type RoomSummary struct {
	ID            uint       `json:"id"`
	RoomName      string     `json:"roomName"`
	StudentID     uint       `json:"studentId"`
	AlumniID      uint       `json:"alumniId"`
	OtherUserID   uint       `json:"otherUserId"`
	OtherUserName string     `json:"otherUserName"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastMessageAt *time.Time `json:"lastMessageAt"`
	IsActive      bool       `json:"isActive"`
	UnreadCount   int64      `json:"unreadCount"`
}

// Summaries lists user's rooms with the counterpart's name and unread count.
func (g *Gateway) Summaries(ctx context.Context, user *models.User) ([]RoomSummary, error) {
	rooms, err := g.Rooms.ListRoomsForUser(ctx, user)
	if err != nil {
		return nil, err
	}

	out := make([]RoomSummary, 0, len(rooms))
	for i := range rooms {
		room := &rooms[i]
		s := RoomSummary{
			ID:            room.ID,
			RoomName:      room.RoomName(),
			StudentID:     room.StudentID,
			AlumniID:      room.AlumniID,
			CreatedAt:     room.CreatedAt,
			LastMessageAt: room.LastMessageAt,
			IsActive:      room.IsActive,
		}
		if otherID, ok := room.OtherParticipant(user.ID); ok {
			s.OtherUserID = otherID
			if other := g.lookupUser(ctx, otherID); other != nil {
				s.OtherUserName = other.FullName
			}
			if s.UnreadCount, err = g.Unread.CountForRoom(ctx, room, user.ID); err != nil {
				return nil, err
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// History returns a page of the room as envelopes, for a participant only.
func (g *Gateway) History(ctx context.Context, roomID, userID uint, limit, offset int) ([]models.ChatEnvelope, error) {
	room, err := g.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsParticipant(userID) {
		return nil, apperr.ErrNotParticipant
	}

	msgs, err := g.Messages.List(ctx, room, limit, offset)
	if err != nil {
		return nil, err
	}

	student := g.lookupUser(ctx, room.StudentID)
	alumni := g.lookupUser(ctx, room.AlumniID)
	byID := func(id uint) *models.User {
		if student != nil && student.ID == id {
			return student
		}
		if alumni != nil && alumni.ID == id {
			return alumni
		}
		return nil
	}

	out := make([]models.ChatEnvelope, 0, len(msgs))
	for i := range msgs {
		out = append(out, models.NewMessageEnvelope(&msgs[i], byID(msgs[i].SenderID), byID(msgs[i].RecipientID)))
	}
	return out, nil
}

// MarkRead marks the room read for userID.
func (g *Gateway) MarkRead(ctx context.Context, roomID, userID uint) (int64, error) {
	room, err := g.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return 0, err
	}
	return g.Messages.MarkAllRead(ctx, room, userID)
}

// UnreadForRoom returns userID's unread count in one room.
func (g *Gateway) UnreadForRoom(ctx context.Context, roomID, userID uint) (int64, error) {
	room, err := g.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return 0, err
	}
	return g.Unread.CountForRoom(ctx, room, userID)
}

// Envelope renders msg the way websocket clients receive it.
func (g *Gateway) Envelope(ctx context.Context, msg *models.Message) models.ChatEnvelope {
	return models.NewMessageEnvelope(msg, g.lookupUser(ctx, msg.SenderID), g.lookupUser(ctx, msg.RecipientID))
}

func (g *Gateway) lookupUser(ctx context.Context, id uint) *models.User {
	u, err := g.Storage.GetUserByID(ctx, id)
	if err != nil {
		g.log.WithError(err).WithField("user_id", id).Debug("user lookup failed")
		return nil
	}
	return u
}
