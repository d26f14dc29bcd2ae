// Package alumni serves the alumni directory.
package alumni

import (
	"context"
	"errors"
	"strings"

	"mentorlink/backend/internal/apperr"
	"mentorlink/backend/internal/auth"
	"mentorlink/backend/internal/models"
	"mentorlink/backend/internal/storage"
)

// Update is an admin or self edit of an alumni profile.
type Update struct {
	FullName *string `json:"fullName"`
	models.AlumniPatch
}

type Service struct {
	Storage storage.Storage
}

func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

// List returns alumni available for mentoring, optionally narrowed by skill
// or company. Only students browse the directory.
func (s *Service) List(ctx context.Context, actor *models.User, filter models.AlumniFilter) ([]models.User, error) {
	if actor == nil {
		return nil, apperr.ErrAuthenticationRequired
	}
	if !actor.IsStudent() {
		return nil, apperr.Forbidden("only students can browse the alumni directory")
	}
	filter.Skill = strings.TrimSpace(filter.Skill)
	filter.Company = strings.TrimSpace(filter.Company)
	return s.Storage.ListAlumni(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Storage.GetUserByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && !user.IsAlumni()) {
		return nil, apperr.NotFound("alumni %d", id)
	}
	return user, err
}

// Update edits an alumni profile. The alumni themselves and admins may do so.
func (s *Service) Update(ctx context.Context, actor *models.User, id uint, in Update) (*models.User, error) {
	if actor == nil {
		return nil, apperr.ErrAuthenticationRequired
	}
	if actor.ID != id && !actor.IsAdmin() {
		return nil, apperr.Forbidden("cannot edit another user's profile")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.FullName != nil {
		name, err := auth.NormalizeFullName(*in.FullName)
		if err != nil {
			return nil, err
		}
		user.FullName = name
	}
	user.NormalizeDetails()
	in.AlumniPatch.Apply(user.Alumni)

	if err := s.Storage.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
