// Package auth handles accounts and sessions: registration, password login
// with signed tokens, logout through a token deny-list, and profile updates.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mentorlink/backend/internal/apperr"
	"mentorlink/backend/internal/models"
	"mentorlink/backend/internal/notify"
	"mentorlink/backend/internal/storage"

	"github.com/sirupsen/logrus"
)

var errInvalidCredentials = fmt.Errorf("%w: invalid email or password", apperr.ErrAuthenticationRequired)

// RegisterInput is a sign-up form. Only the details matching Role are used.
type RegisterInput struct {
	Email    string               `json:"email"`
	Password string               `json:"password"`
	FullName string               `json:"fullName"`
	Role     string               `json:"role"`
	Student  *models.StudentPatch `json:"student"`
	Alumni   *models.AlumniPatch  `json:"alumni"`
}

// ProfileInput updates the caller's own profile. Role and email never change.
type ProfileInput struct {
	FullName *string              `json:"fullName"`
	Student  *models.StudentPatch `json:"student"`
	Alumni   *models.AlumniPatch  `json:"alumni"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type Service struct {
	Storage  storage.Storage
	Tokens   *TokenManager
	Revoker  Revoker
	Notifier notify.Notifier

	log *logrus.Entry
}

func NewService(s storage.Storage, tokens *TokenManager, revoker Revoker, n notify.Notifier, log *logrus.Logger) *Service {
	if n == nil {
		n = notify.Nop{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		Storage:  s,
		Tokens:   tokens,
		Revoker:  revoker,
		Notifier: n,
		log:      log.WithField("component", "auth"),
	}
}

// Register creates a STUDENT or ALUMNI account and sends a welcome email.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	role, ok := models.ParseRole(in.Role)
	if !ok || role == models.RoleAdmin {
		return nil, apperr.Validation("role must be STUDENT or ALUMNI")
	}

	user := &models.User{Role: role}
	switch role {
	case models.RoleStudent:
		user.Student = &models.StudentDetails{}
		in.Student.Apply(user.Student)
	case models.RoleAlumni:
		user.Alumni = &models.AlumniDetails{AvailableForMentoring: true}
		in.Alumni.Apply(user.Alumni)
	}

	if err := s.create(ctx, user, in.Email, in.Password, in.FullName); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user registered")
	s.Notifier.WelcomeUser(ctx, user)
	return user, nil
}

// CreateAdmin creates an ADMIN account. It is only reachable from the admin
// CLI.
func (s *Service) CreateAdmin(ctx context.Context, email, password, fullName string) (*models.User, error) {
	user := &models.User{Role: models.RoleAdmin}
	if err := s.create(ctx, user, email, password, fullName); err != nil {
		return nil, err
	}
	s.log.WithField("user_id", user.ID).Info("admin created")
	return user, nil
}

func (s *Service) create(ctx context.Context, user *models.User, email, password, fullName string) error {
	user.Email = NormalizeEmail(email)
	if err := ValidateEmail(user.Email); err != nil {
		return err
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}
	name, err := NormalizeFullName(fullName)
	if err != nil {
		return err
	}
	user.FullName = name

	hashed, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hashed
	user.NormalizeDetails()

	err = s.Storage.CreateUser(ctx, user)
	if errors.Is(err, storage.ErrDuplicateEntry) {
		return apperr.Conflict("email %s is already registered", user.Email)
	}
	return err
}

// Login checks the credentials and issues a token. Unknown emails and wrong
// passwords produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.Storage.GetUserByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return nil, errInvalidCredentials
	}

	token, claims, err := s.Tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, *Claims, error) {
	if token == "" {
		return nil, nil, apperr.ErrAuthenticationRequired
	}
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperr.ErrAuthenticationRequired, err)
	}

	if s.Revoker != nil {
		revoked, err := s.Revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, nil, fmt.Errorf("%w: token has been revoked", apperr.ErrAuthenticationRequired)
		}
	}

	user, err := s.Storage.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: user no longer exists", apperr.ErrAuthenticationRequired)
	}
	if err != nil {
		return nil, nil, err
	}
	return user, claims, nil
}

// Logout revokes the token described by claims until it would expire.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil {
		return apperr.ErrAuthenticationRequired
	}
	if s.Revoker == nil {
		return nil
	}
	var until time.Time
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return s.Revoker.Revoke(ctx, claims.ID, until)
}

func (s *Service) CurrentUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Storage.GetUserByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("user %d", id)
	}
	return user, err
}

// UpdateProfile changes the caller's name and the details matching their
// role. Details for the other role are ignored.
func (s *Service) UpdateProfile(ctx context.Context, user *models.User, in ProfileInput) (*models.User, error) {
	if user == nil {
		return nil, apperr.ErrAuthenticationRequired
	}
	current, err := s.CurrentUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if in.FullName != nil {
		name, err := NormalizeFullName(*in.FullName)
		if err != nil {
			return nil, err
		}
		current.FullName = name
	}
	current.NormalizeDetails()
	switch current.Role {
	case models.RoleStudent:
		in.Student.Apply(current.Student)
	case models.RoleAlumni:
		in.Alumni.Apply(current.Alumni)
	}

	if err := s.Storage.UpdateUser(ctx, current); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("user %d", user.ID)
		}
		return nil, err
	}
	return current, nil
}
