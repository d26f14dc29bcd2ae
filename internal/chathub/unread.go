package chathub

import (
	"context"

	"mentorlink/backend/internal/apperr"
	"mentorlink/backend/internal/models"
	"mentorlink/backend/internal/storage"
)

// UnreadCounter derives unread counts from the message log on every call.
type UnreadCounter struct {
	Storage storage.Storage
}

func NewUnreadCounter(s storage.Storage) *UnreadCounter {
	return &UnreadCounter{Storage: s}
}

// CountForRoom counts the messages the other participant sent to userID that
// userID has not read.
func (u *UnreadCounter) CountForRoom(ctx context.Context, room *models.ChatRoom, userID uint) (int64, error) {
	otherID, ok := room.OtherParticipant(userID)
	if !ok {
		return 0, apperr.ErrNotParticipant
	}
	return u.Storage.CountUnread(ctx, otherID, userID)
}

func (u *UnreadCounter) CountTotal(ctx context.Context, userID uint) (int64, error) {
	return u.Storage.CountUnreadTotal(ctx, userID)
}
