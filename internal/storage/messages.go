package storage

import (
	"context"

	"mentorlink/backend/internal/models"

	"gorm.io/gorm"
)

func (s *Service) AppendMessage(ctx context.Context, room *models.ChatRoom, msg *models.Message) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.ChatRoom{}).
			Where("id = ?", room.ID).
			Update("last_message_at", msg.CreatedAt).Error
	})
	if err != nil {
		return translate("append message", err)
	}

	at := msg.CreatedAt
	room.LastMessageAt = &at
	return nil
}

func (s *Service) ListMessages(ctx context.Context, studentID, alumniID uint, limit, offset int) ([]models.Message, error) {
	var msgs []models.Message
	err := s.DB.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			studentID, alumniID, alumniID, studentID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error
	if err != nil {
		return nil, translate("list messages", err)
	}
	return msgs, nil
}

// MarkRead flips every unread message from sender to recipient and returns
// how many rows changed.
func (s *Service) MarkRead(ctx context.Context, senderID, recipientID uint) (int64, error) {
	res := s.DB.WithContext(ctx).
		Model(&models.Message{}).
		Where("sender_id = ? AND recipient_id = ? AND is_read = ?", senderID, recipientID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, translate("mark read", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Service) CountUnread(ctx context.Context, senderID, recipientID uint) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).
		Model(&models.Message{}).
		Where("sender_id = ? AND recipient_id = ? AND is_read = ?", senderID, recipientID, false).
		Count(&n).Error
	return n, translate("count unread", err)
}

func (s *Service) CountUnreadTotal(ctx context.Context, recipientID uint) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).
		Model(&models.Message{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&n).Error
	return n, translate("count unread total", err)
}
