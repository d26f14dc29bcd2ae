package chathub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mentorlink/backend/internal/apperr"
	"mentorlink/backend/internal/models"
	"mentorlink/backend/internal/storage"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const roomCreateTimeout = 10 * time.Second

// RoomRegistry maps (student, alumni) pairs to their unique ChatRoom.
type RoomRegistry struct {
	Storage storage.Storage

	group singleflight.Group
	now   func() time.Time
	log   *logrus.Entry
}

func NewRoomRegistry(s storage.Storage, log *logrus.Logger) *RoomRegistry {
	return &RoomRegistry{
		Storage: s,
		now:     time.Now,
		log:     loggerOrDefault(log).WithField("component", "room_registry"),
	}
}

// GetOrCreateRoom returns the room of the pair, creating it on first use.
// Concurrent calls for the same pair are collapsed in-process; across
// processes the unique index on the pair decides and the loser re-reads.
func (r *RoomRegistry) GetOrCreateRoom(ctx context.Context, studentID, alumniID uint) (*models.ChatRoom, error) {
	room, err := r.Storage.GetRoomByPair(ctx, studentID, alumniID)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if err := r.validatePair(ctx, studentID, alumniID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%d:%d", studentID, alumniID)
	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		// Every caller waiting on key gets this result, so the first caller's
		// cancellation must not end it.
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), roomCreateTimeout)
		defer cancel()
		return r.create(cctx, studentID, alumniID)
	})
	if err != nil {
		return nil, err
	}
	// singleflight hands the same pointer to every waiter.
	c := *v.(*models.ChatRoom)
	return &c, nil
}

func (r *RoomRegistry) create(ctx context.Context, studentID, alumniID uint) (*models.ChatRoom, error) {
	if room, err := r.Storage.GetRoomByPair(ctx, studentID, alumniID); err == nil {
		return room, nil
	}

	now := r.now()
	room := &models.ChatRoom{
		StudentID:     studentID,
		AlumniID:      alumniID,
		CreatedAt:     now,
		LastMessageAt: &now,
		IsActive:      true,
	}
	err := r.Storage.CreateRoom(ctx, room)
	switch {
	case err == nil:
		r.log.WithFields(logrus.Fields{"room_id": room.ID, "student_id": studentID, "alumni_id": alumniID}).
			Info("chat room created")
		return room, nil
	case errors.Is(err, storage.ErrDuplicateEntry):
		return r.Storage.GetRoomByPair(ctx, studentID, alumniID)
	default:
		return nil, err
	}
}

func (r *RoomRegistry) validatePair(ctx context.Context, studentID, alumniID uint) error {
	student, err := r.Storage.GetUserByID(ctx, studentID)
	if err != nil {
		return notFound(err, "user %d", studentID)
	}
	if !student.IsStudent() {
		return apperr.Validation("user %d is not a student", studentID)
	}

	alumni, err := r.Storage.GetUserByID(ctx, alumniID)
	if err != nil {
		return notFound(err, "user %d", alumniID)
	}
	if !alumni.IsAlumni() {
		return apperr.Validation("user %d is not an alumni", alumniID)
	}
	return nil
}

// CreateFromAcceptedRequest opens (or returns) the room for an accepted
// mentor request.
func (r *RoomRegistry) CreateFromAcceptedRequest(ctx context.Context, req *models.MentorRequest) (*models.ChatRoom, error) {
	if req == nil {
		return nil, apperr.Validation("mentor request is required")
	}
	if req.Status != models.StatusAccepted {
		return nil, apperr.InvalidState("mentor request %d is %s, not %s", req.ID, req.Status, models.StatusAccepted)
	}
	return r.GetOrCreateRoom(ctx, req.StudentID, req.AlumniID)
}

func (r *RoomRegistry) GetRoom(ctx context.Context, id uint) (*models.ChatRoom, error) {
	room, err := r.Storage.GetRoomByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "chat room %d", id)
	}
	return room, nil
}

// ListRoomsForUser returns a student's rooms, or an alumni's rooms for any
// other role, most recently active first.
func (r *RoomRegistry) ListRoomsForUser(ctx context.Context, user *models.User) ([]models.ChatRoom, error) {
	if user == nil {
		return nil, apperr.ErrAuthenticationRequired
	}
	return r.Storage.ListRoomsForUser(ctx, user.ID, user.Role)
}

func (r *RoomRegistry) SetActive(ctx context.Context, id uint, active bool) error {
	if err := r.Storage.SetRoomActive(ctx, id, active); err != nil {
		return notFound(err, "chat room %d", id)
	}
	r.log.WithFields(logrus.Fields{"room_id": id, "active": active}).Info("chat room state changed")
	return nil
}

// notFound turns storage.ErrNotFound into apperr.ErrNotFound and passes any
// other error through.
func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(format, args...)
	}
	return err
}
