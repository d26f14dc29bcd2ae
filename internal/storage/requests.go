package storage

import (
	"context"
	"errors"
	"time"

	"mentorlink/backend/internal/models"
)

func (s *Service) CreateMentorRequest(ctx context.Context, req *models.MentorRequest) error {
	return translate("create mentor request", s.DB.WithContext(ctx).Create(req).Error)
}

func (s *Service) GetMentorRequest(ctx context.Context, id uint) (*models.MentorRequest, error) {
	var req models.MentorRequest
	err := s.DB.WithContext(ctx).
		Preload("Student.Student").
		Preload("Alumni.Alumni").
		First(&req, id).Error
	if err != nil {
		return nil, translate("get mentor request", err)
	}
	return &req, nil
}

func (s *Service) ListMentorRequests(ctx context.Context, filter models.RequestFilter) ([]models.MentorRequest, error) {
	q := s.DB.WithContext(ctx).
		Preload("Student.Student").
		Preload("Alumni.Alumni")
	if filter.StudentID != 0 {
		q = q.Where("student_id = ?", filter.StudentID)
	}
	if filter.AlumniID != 0 {
		q = q.Where("alumni_id = ?", filter.AlumniID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var reqs []models.MentorRequest
	if err := q.Order("created_at DESC, id DESC").Find(&reqs).Error; err != nil {
		return nil, translate("list mentor requests", err)
	}
	return reqs, nil
}

func (s *Service) TransitionMentorRequest(ctx context.Context, id uint, from, to models.RequestStatus) (*models.MentorRequest, error) {
	res := s.DB.WithContext(ctx).
		Model(&models.MentorRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, translate("transition mentor request", res.Error)
	}

	req, err := s.GetMentorRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return req, ErrStaleState
	}
	return req, nil
}

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
