package chathub

import (
	"context"
	"time"

	"mentorlink/backend/internal/apperr"
	"mentorlink/backend/internal/config"
	"mentorlink/backend/internal/models"
	"mentorlink/backend/internal/storage"
)

// MessageStore is the per-room message log. A room's history is every
// message exchanged between its two participants.
type MessageStore struct {
	Storage storage.Storage
	now     func() time.Time
}

func NewMessageStore(s storage.Storage) *MessageStore {
	return &MessageStore{Storage: s, now: time.Now}
}

// Append persists a message from senderID to the other participant and
// bumps the room's last activity in the same transaction.
func (ms *MessageStore) Append(ctx context.Context, room *models.ChatRoom, senderID uint, content string) (*models.Message, error) {
	recipientID, ok := room.OtherParticipant(senderID)
	if !ok {
		return nil, apperr.ErrNotParticipant
	}

	msg := &models.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		Read:        false,
		CreatedAt:   ms.now(),
	}
	if err := ms.Storage.AppendMessage(ctx, room, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// List pages through the room history oldest first.
func (ms *MessageStore) List(ctx context.Context, room *models.ChatRoom, limit, offset int) ([]models.Message, error) {
	limit, offset, err := NormalizePage(limit, offset)
	if err != nil {
		return nil, err
	}
	return ms.Storage.ListMessages(ctx, room.StudentID, room.AlumniID, limit, offset)
}

// MarkAllRead marks everything the other participant sent to readerID as
// read and returns how many messages changed.
func (ms *MessageStore) MarkAllRead(ctx context.Context, room *models.ChatRoom, readerID uint) (int64, error) {
	otherID, ok := room.OtherParticipant(readerID)
	if !ok {
		return 0, apperr.ErrNotParticipant
	}
	return ms.Storage.MarkRead(ctx, otherID, readerID)
}

// NormalizePage applies the default and maximum page size.
func NormalizePage(limit, offset int) (int, int, error) {
	if offset < 0 {
		return 0, 0, apperr.Validation("offset must not be negative")
	}
	switch {
	case limit <= 0:
		limit = config.DefaultPageSize
	case limit > config.MaxPageSize:
		limit = config.MaxPageSize
	}
	return limit, offset, nil
}
