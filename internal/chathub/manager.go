package chathub

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"mentorlink/backend/internal/apperr"
	"mentorlink/backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var ErrHubClosed = errors.New("chathub: hub is shut down")

type session struct {
	client Client
	name   string
}

// ManagerService is the in-memory registry of live connections, keyed by
// room and then by user. It is created at server start and torn down with
// Shutdown; nothing in it is persisted.
type ManagerService struct {
	mu     sync.RWMutex
	rooms  map[uint]map[uint]*session
	closed bool

	now func() time.Time
	log *logrus.Entry
}

func NewManagerService(log *logrus.Logger) *ManagerService {
	return &ManagerService{
		rooms: make(map[uint]map[uint]*session),
		now:   time.Now,
		log:   loggerOrDefault(log).WithField("component", "hub"),
	}
}

// Register adds client as user's connection to room. It fails closed with
// apperr.ErrAccessDenied when user is not a participant. A previous
// connection of the same user in the same room is replaced and closed.
func (m *ManagerService) Register(room *models.ChatRoom, user *models.User, client Client) error {
	if room == nil || user == nil || client == nil || !room.IsParticipant(user.ID) {
		return apperr.ErrAccessDenied
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrHubClosed
	}
	members, ok := m.rooms[room.ID]
	if !ok {
		members = make(map[uint]*session)
		m.rooms[room.ID] = members
	}
	prev := members[user.ID]
	members[user.ID] = &session{client: client, name: user.FullName}
	others := snapshot(members, user.ID)
	m.mu.Unlock()

	if prev != nil && prev.client != client {
		prev.client.Close(websocket.CloseNormalClosure, "replaced by a new connection")
	}

	m.log.WithFields(logrus.Fields{"room_id": room.ID, "user_id": user.ID, "conn_id": client.ConnID()}).
		Info("client registered")
	m.deliver(room.ID, others, models.NewSystemEnvelope(fmt.Sprintf("%s joined the chat", user.FullName), m.now()))
	return nil
}

// Unregister removes client if it is still the registered connection of the
// user; a stale disconnect never evicts a newer connection. A nil client
// removes whatever is registered.
func (m *ManagerService) Unregister(roomID, userID uint, client Client) {
	m.mu.Lock()
	members := m.rooms[roomID]
	s, ok := members[userID]
	if !ok || (client != nil && s.client != client) {
		m.mu.Unlock()
		return
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(m.rooms, roomID)
	}
	others := snapshot(members, userID)
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID}).Info("client unregistered")
	m.deliver(roomID, others, models.NewSystemEnvelope(fmt.Sprintf("%s left the chat", s.name), m.now()))
}

// Broadcast sends env to every connection in the room except excludeUserID
// and returns how many deliveries succeeded.
func (m *ManagerService) Broadcast(roomID uint, env models.ChatEnvelope, excludeUserID uint) int {
	m.mu.RLock()
	recipients := snapshot(m.rooms[roomID], excludeUserID)
	m.mu.RUnlock()

	return m.deliver(roomID, recipients, env)
}

// deliver runs outside the lock. One failing client never blocks the others.
func (m *ManagerService) deliver(roomID uint, recipients []*session, env models.ChatEnvelope) int {
	delivered := 0
	for _, s := range recipients {
		if err := s.client.Deliver(env); err != nil {
			m.log.WithError(err).WithFields(logrus.Fields{
				"room_id": roomID,
				"user_id": s.client.GetUserID(),
			}).Warn("dropping envelope for client")
			continue
		}
		delivered++
	}
	return delivered
}

// Online lists the users connected to a room.
func (m *ManagerService) Online(roomID uint) []uint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]uint, 0, len(m.rooms[roomID]))
	for id := range m.rooms[roomID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Shutdown closes every connection and rejects further registrations.
func (m *ManagerService) Shutdown() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	var all []*session
	for _, members := range m.rooms {
		for _, s := range members {
			all = append(all, s)
		}
	}
	m.rooms = make(map[uint]map[uint]*session)
	m.mu.Unlock()

	for _, s := range all {
		s.client.Close(websocket.CloseGoingAway, "server shutting down")
	}
	m.log.WithField("connections", len(all)).Info("hub shut down")
}

func snapshot(members map[uint]*session, exclude uint) []*session {
	out := make([]*session, 0, len(members))
	for id, s := range members {
		if id != exclude {
			out = append(out, s)
		}
	}
	return out
}
