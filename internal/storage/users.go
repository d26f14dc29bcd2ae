package storage

import (
	"context"
	"strings"

	"mentorlink/backend/internal/models"

	"gorm.io/gorm"
)

func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	// Student/Alumni payloads are inserted by GORM's association save.
	return translate("create user", s.DB.WithContext(ctx).Create(user).Error)
}

func (s *Service) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).
		Preload("Student").
		Preload("Alumni").
		First(&user, id).Error
	if err != nil {
		return nil, translate("get user", err)
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).
		Preload("Student").
		Preload("Alumni").
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		return nil, translate("get user by email", err)
	}
	return &user, nil
}

func (s *Service) UpdateUser(ctx context.Context, user *models.User) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ?", user.ID).
			Update("full_name", user.FullName)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		// Save updates every column, including false/zero values, and inserts
		// the row when it does not exist yet.
		if user.Student != nil {
			user.Student.UserID = user.ID
			if err := tx.Save(user.Student).Error; err != nil {
				return err
			}
		}
		if user.Alumni != nil {
			user.Alumni.UserID = user.ID
			if err := tx.Save(user.Alumni).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translate("update user", err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching term literally anywhere
// in the value.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// ListAlumni returns alumni available for mentoring, sorted by name. A skill
// filter matches any skill containing the term, case-insensitively.
func (s *Service) ListAlumni(ctx context.Context, filter models.AlumniFilter) ([]models.User, error) {
	q := s.DB.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN alumni_details ON alumni_details.user_id = users.id").
		Where("users.role = ? AND alumni_details.available_for_mentoring = ?", models.RoleAlumni, true).
		Preload("Alumni")

	switch {
	case filter.Skill != "":
		q = q.Where("EXISTS (SELECT 1 FROM unnest(alumni_details.skills) AS skill WHERE skill ILIKE ?)",
			containsPattern(filter.Skill))
	case filter.Company != "":
		q = q.Where("alumni_details.company ILIKE ?", containsPattern(filter.Company))
	}

	var users []models.User
	if err := q.Order("users.full_name ASC, users.id ASC").Find(&users).Error; err != nil {
		return nil, translate("list alumni", err)
	}
	return users, nil
}
