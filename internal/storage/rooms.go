package storage

import (
	"context"

	"mentorlink/backend/internal/models"
)

func (s *Service) GetRoomByID(ctx context.Context, id uint) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := s.DB.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, translate("get room", err)
	}
	return &room, nil
}

func (s *Service) GetRoomByPair(ctx context.Context, studentID, alumniID uint) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := s.DB.WithContext(ctx).
		Where("student_id = ? AND alumni_id = ?", studentID, alumniID).
		First(&room).Error
	if err != nil {
		return nil, translate("get room by pair", err)
	}
	return &room, nil
}

// CreateRoom returns ErrDuplicateEntry when a room for the pair already exists.
func (s *Service) CreateRoom(ctx context.Context, room *models.ChatRoom) error {
	return translate("create room", s.DB.WithContext(ctx).Create(room).Error)
}

// ListRoomsForUser lists the rooms of a student, or of an alumni for any other
// role, most recently active first.
func (s *Service) ListRoomsForUser(ctx context.Context, userID uint, role models.Role) ([]models.ChatRoom, error) {
	column := "alumni_id"
	if role == models.RoleStudent {
		column = "student_id"
	}

	var rooms []models.ChatRoom
	err := s.DB.WithContext(ctx).
		Where(column+" = ?", userID).
		Order("COALESCE(last_message_at, created_at) DESC, id DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, translate("list rooms", err)
	}
	return rooms, nil
}

func (s *Service) SetRoomActive(ctx context.Context, id uint, active bool) error {
	res := s.DB.WithContext(ctx).
		Model(&models.ChatRoom{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return translate("set room active", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
