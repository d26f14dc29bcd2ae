// Package storagetest provides an in-memory storage.Storage for service and
// handler tests.
package storagetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"mentorlink/backend/internal/models"
	"mentorlink/backend/internal/storage"
)

// Memory keeps every table in maps behind one mutex. Returned records are
// copies, so callers can mutate them freely.
type Memory struct {
	mu sync.Mutex

	users    map[uint]*models.User
	rooms    map[uint]*models.ChatRoom
	messages []*models.Message
	requests map[uint]*models.MentorRequest
	nextID   uint

	// Failure injection.
	CreateRoomErr    error
	AppendMessageErr error

	// CreateRoomCalls counts CreateRoom invocations, successful or not.
	CreateRoomCalls int
	// Clock stamps request updates; defaults to time.Now.
	Clock func() time.Time
}

var _ storage.Storage = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		users:    make(map[uint]*models.User),
		rooms:    make(map[uint]*models.ChatRoom),
		requests: make(map[uint]*models.MentorRequest),
		Clock:    time.Now,
	}
}

func (m *Memory) id() uint {
	m.nextID++
	return m.nextID
}

func copyUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Student != nil {
		s := *u.Student
		c.Student = &s
	}
	if u.Alumni != nil {
		a := *u.Alumni
		a.Skills = append([]string(nil), u.Alumni.Skills...)
		c.Alumni = &a
	}
	return &c
}

func copyRoom(r *models.ChatRoom) *models.ChatRoom {
	c := *r
	if r.LastMessageAt != nil {
		t := *r.LastMessageAt
		c.LastMessageAt = &t
	}
	return &c
}

// Users

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return storage.ErrDuplicateEntry
		}
	}
	user.ID = m.id()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = m.Clock()
	}
	if user.Student != nil {
		user.Student.UserID = user.ID
	}
	if user.Alumni != nil {
		user.Alumni.UserID = user.ID
	}
	m.users[user.ID] = copyUser(user)
	return nil
}

func (m *Memory) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyUser(u), nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *Memory) UpdateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.users[user.ID]
	if !ok {
		return storage.ErrNotFound
	}
	stored.FullName = user.FullName
	if user.Student != nil {
		s := *user.Student
		s.UserID = user.ID
		stored.Student = &s
	}
	if user.Alumni != nil {
		a := *user.Alumni
		a.UserID = user.ID
		a.Skills = append([]string(nil), user.Alumni.Skills...)
		stored.Alumni = &a
	}
	return nil
}

func (m *Memory) ListAlumni(_ context.Context, filter models.AlumniFilter) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.User
	for _, u := range m.users {
		if u.Role != models.RoleAlumni || u.Alumni == nil || !u.Alumni.AvailableForMentoring {
			continue
		}
		switch {
		case filter.Skill != "":
			if !anyContainsFold(u.Alumni.Skills, filter.Skill) {
				continue
			}
		case filter.Company != "":
			if !containsFold(u.Alumni.Company, filter.Company) {
				continue
			}
		}
		out = append(out, *copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func anyContainsFold(values []string, sub string) bool {
	for _, v := range values {
		if containsFold(v, sub) {
			return true
		}
	}
	return false
}

// Rooms

func (m *Memory) GetRoomByID(_ context.Context, id uint) (*models.ChatRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyRoom(r), nil
}

func (m *Memory) GetRoomByPair(_ context.Context, studentID, alumniID uint) (*models.ChatRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.rooms {
		if r.StudentID == studentID && r.AlumniID == alumniID {
			return copyRoom(r), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *Memory) CreateRoom(_ context.Context, room *models.ChatRoom) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateRoomCalls++
	if m.CreateRoomErr != nil {
		return m.CreateRoomErr
	}
	for _, r := range m.rooms {
		if r.StudentID == room.StudentID && r.AlumniID == room.AlumniID {
			return storage.ErrDuplicateEntry
		}
	}
	room.ID = m.id()
	m.rooms[room.ID] = copyRoom(room)
	return nil
}

func (m *Memory) ListRoomsForUser(_ context.Context, userID uint, role models.Role) ([]models.ChatRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.ChatRoom
	for _, r := range m.rooms {
		owner := r.AlumniID
		if role == models.RoleStudent {
			owner = r.StudentID
		}
		if owner == userID {
			out = append(out, *copyRoom(r))
		}
	}
	activity := func(r models.ChatRoom) time.Time {
		if r.LastMessageAt != nil {
			return *r.LastMessageAt
		}
		return r.CreatedAt
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := activity(out[i]), activity(out[j])
		if !ai.Equal(aj) {
			return ai.After(aj)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *Memory) SetRoomActive(_ context.Context, id uint, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[id]
	if !ok {
		return storage.ErrNotFound
	}
	r.IsActive = active
	return nil
}

// Messages

func (m *Memory) AppendMessage(_ context.Context, room *models.ChatRoom, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AppendMessageErr != nil {
		return m.AppendMessageErr
	}
	stored, ok := m.rooms[room.ID]
	if !ok {
		return storage.ErrNotFound
	}
	msg.ID = m.id()
	c := *msg
	m.messages = append(m.messages, &c)

	at := msg.CreatedAt
	stored.LastMessageAt = &at
	room.LastMessageAt = &at
	return nil
}

func (m *Memory) ListMessages(_ context.Context, studentID, alumniID uint, limit, offset int) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []models.Message
	for _, msg := range m.messages {
		if (msg.SenderID == studentID && msg.RecipientID == alumniID) ||
			(msg.SenderID == alumniID && msg.RecipientID == studentID) {
			all = append(all, *msg)
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	if offset >= len(all) {
		return []models.Message{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

func (m *Memory) MarkRead(_ context.Context, senderID, recipientID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, msg := range m.messages {
		if msg.SenderID == senderID && msg.RecipientID == recipientID && !msg.Read {
			msg.Read = true
			n++
		}
	}
	return n, nil
}

func (m *Memory) CountUnread(_ context.Context, senderID, recipientID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, msg := range m.messages {
		if msg.SenderID == senderID && msg.RecipientID == recipientID && !msg.Read {
			n++
		}
	}
	return n, nil
}

func (m *Memory) CountUnreadTotal(_ context.Context, recipientID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, msg := range m.messages {
		if msg.RecipientID == recipientID && !msg.Read {
			n++
		}
	}
	return n, nil
}

// MessageCount returns the number of stored messages.
func (m *Memory) MessageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// RoomCount returns the number of stored rooms.
func (m *Memory) RoomCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}

// Mentor requests

func (m *Memory) withParticipants(r *models.MentorRequest) *models.MentorRequest {
	c := *r
	c.Student = copyUser(m.users[r.StudentID])
	c.Alumni = copyUser(m.users[r.AlumniID])
	return &c
}

func (m *Memory) CreateMentorRequest(_ context.Context, req *models.MentorRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	req.ID = m.id()
	now := m.Clock()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now
	c := *req
	c.Student, c.Alumni = nil, nil
	m.requests[req.ID] = &c
	return nil
}

func (m *Memory) GetMentorRequest(_ context.Context, id uint) (*models.MentorRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.requests[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return m.withParticipants(r), nil
}

func (m *Memory) ListMentorRequests(_ context.Context, filter models.RequestFilter) ([]models.MentorRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.MentorRequest
	for _, r := range m.requests {
		if filter.StudentID != 0 && r.StudentID != filter.StudentID {
			continue
		}
		if filter.AlumniID != 0 && r.AlumniID != filter.AlumniID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, *m.withParticipants(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *Memory) TransitionMentorRequest(_ context.Context, id uint, from, to models.RequestStatus) (*models.MentorRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.requests[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if r.Status != from {
		return m.withParticipants(r), storage.ErrStaleState
	}
	r.Status = to
	r.UpdatedAt = m.Clock()
	return m.withParticipants(r), nil
}
