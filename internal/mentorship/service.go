// Package mentorship implements the mentor request workflow: a student asks,
// the alumni (or an admin) accepts or rejects, and acceptance opens a chat
// room.
package mentorship

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"mentorlink/backend/internal/apperr"
	"mentorlink/backend/internal/config"
	"mentorlink/backend/internal/models"
	"mentorlink/backend/internal/notify"
	"mentorlink/backend/internal/storage"

	"github.com/sirupsen/logrus"
)

// RoomOpener opens the chat room of an accepted request.
type RoomOpener interface {
	CreateFromAcceptedRequest(ctx context.Context, req *models.MentorRequest) (*models.ChatRoom, error)
}

type Service struct {
	Storage  storage.Storage
	Rooms    RoomOpener
	Notifier notify.Notifier

	log *logrus.Entry
}

func NewService(s storage.Storage, rooms RoomOpener, n notify.Notifier, log *logrus.Logger) *Service {
	if n == nil {
		n = notify.Nop{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		Storage:  s,
		Rooms:    rooms,
		Notifier: n,
		log:      log.WithField("component", "mentorship"),
	}
}

// Create files a PENDING request from student to alumniID and notifies the
// alumni.
func (s *Service) Create(ctx context.Context, student *models.User, alumniID uint, message string) (*models.MentorRequest, error) {
	if student == nil {
		return nil, apperr.ErrAuthenticationRequired
	}
	if !student.IsStudent() {
		return nil, apperr.Forbidden("only students can request mentorship")
	}

	alumni, err := s.Storage.GetUserByID(ctx, alumniID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("alumni %d", alumniID)
	}
	if err != nil {
		return nil, err
	}
	if !alumni.IsAlumni() {
		return nil, apperr.Validation("user %d is not an alumni", alumniID)
	}

	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) > config.MaxRequestMessageLength {
		return nil, apperr.Validation("message exceeds %d characters", config.MaxRequestMessageLength)
	}

	req := &models.MentorRequest{
		StudentID: student.ID,
		AlumniID:  alumni.ID,
		Message:   message,
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
	}
	if err := s.Storage.CreateMentorRequest(ctx, req); err != nil {
		return nil, err
	}
	req.Student, req.Alumni = student, alumni

	s.log.WithFields(logrus.Fields{"request_id": req.ID, "student_id": student.ID, "alumni_id": alumni.ID}).
		Info("mentor request created")
	s.Notifier.MentorRequestCreated(ctx, req, student, alumni)
	return req, nil
}

// Get returns a request visible to actor: its student, its alumni, or an admin.
func (s *Service) Get(ctx context.Context, actor *models.User, id uint) (*models.MentorRequest, error) {
	if actor == nil {
		return nil, apperr.ErrAuthenticationRequired
	}
	req, err := s.Storage.GetMentorRequest(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("mentor request %d", id)
	}
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != req.StudentID && actor.ID != req.AlumniID {
		return nil, apperr.ErrAccessDenied
	}
	return req, nil
}

// List returns a student's own requests, the requests addressed to an
// alumni, or every request for an admin, newest first.
func (s *Service) List(ctx context.Context, actor *models.User, status *models.RequestStatus) ([]models.MentorRequest, error) {
	if actor == nil {
		return nil, apperr.ErrAuthenticationRequired
	}

	var filter models.RequestFilter
	switch actor.Role {
	case models.RoleStudent:
		filter.StudentID = actor.ID
	case models.RoleAlumni:
		filter.AlumniID = actor.ID
	case models.RoleAdmin:
	default:
		return nil, apperr.ErrForbidden
	}
	if status != nil {
		filter.Status = *status
	}
	return s.Storage.ListMentorRequests(ctx, filter)
}

// UpdateStatus moves a PENDING request to ACCEPTED or REJECTED. Only the
// addressed alumni or an admin may do it. The transition is committed even
// if opening the chat room or notifying the student fails afterwards.
func (s *Service) UpdateStatus(ctx context.Context, actor *models.User, id uint, status models.RequestStatus) (*models.MentorRequest, error) {
	if actor == nil {
		return nil, apperr.ErrAuthenticationRequired
	}
	if !actor.IsAlumni() && !actor.IsAdmin() {
		return nil, apperr.Forbidden("only the alumni or an admin can update a request")
	}
	if !status.IsTerminal() {
		return nil, apperr.Validation("status must be %s or %s", models.StatusAccepted, models.StatusRejected)
	}

	current, err := s.Storage.GetMentorRequest(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("mentor request %d", id)
	}
	if err != nil {
		return nil, err
	}
	if actor.IsAlumni() && current.AlumniID != actor.ID {
		return nil, apperr.Forbidden("request %d is addressed to another alumni", id)
	}
	if !current.Status.CanTransition(status) {
		return nil, apperr.InvalidState("mentor request %d is already %s", id, current.Status)
	}

	req, err := s.Storage.TransitionMentorRequest(ctx, id, models.StatusPending, status)
	switch {
	case errors.Is(err, storage.ErrStaleState):
		return nil, apperr.InvalidState("mentor request %d is no longer %s", id, models.StatusPending)
	case errors.Is(err, storage.ErrNotFound):
		return nil, apperr.NotFound("mentor request %d", id)
	case err != nil:
		return nil, err
	}

	logCtx := s.log.WithFields(logrus.Fields{"request_id": id, "status": status, "actor_id": actor.ID})
	logCtx.Info("mentor request status updated")

	if status == models.StatusAccepted {
		if room, err := s.Rooms.CreateFromAcceptedRequest(ctx, req); err != nil {
			logCtx.WithError(err).Error("chat room creation failed after acceptance")
		} else {
			logCtx.WithField("room_id", room.ID).Info("chat room ready")
		}
	}

	s.Notifier.RequestStatusChanged(ctx, req, req.Student, req.Alumni)
	return req, nil
}
