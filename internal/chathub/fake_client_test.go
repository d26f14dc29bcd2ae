package chathub_test

import (
	"sync"

	"mentorlink/backend/internal/chathub"
	"mentorlink/backend/internal/models"

	"github.com/google/uuid"
)

// fakeClient records deliveries in memory. Failing clients reject every
// envelope, as a closed socket would.
type fakeClient struct {
	userID uint
	roomID uint
	id     string

	mu          sync.Mutex
	received    []models.ChatEnvelope
	closed      bool
	closeCode   int
	closeReason string
	failing     bool
}

var _ chathub.Client = (*fakeClient)(nil)

func newFakeClient(roomID, userID uint) *fakeClient {
	return &fakeClient{userID: userID, roomID: roomID, id: uuid.NewString()}
}

func (c *fakeClient) GetUserID() uint { return c.userID }
func (c *fakeClient) GetRoomID() uint { return c.roomID }
func (c *fakeClient) ConnID() string  { return c.id }
func (c *fakeClient) Run()            {}

func (c *fakeClient) Deliver(env models.ChatEnvelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return chathub.ErrSendBufferFull
	}
	if c.closed {
		return chathub.ErrClientClosed
	}
	c.received = append(c.received, env)
	return nil
}

func (c *fakeClient) Close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.closeCode = code
	c.closeReason = reason
}

func (c *fakeClient) Received() []models.ChatEnvelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.ChatEnvelope(nil), c.received...)
}

func (c *fakeClient) IsClosed() (bool, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed, c.closeCode
}

// contents returns the Content of every received envelope of type t.
func (c *fakeClient) contents(t string) []string {
	var out []string
	for _, env := range c.Received() {
		if env.Type == t {
			out = append(out, env.Content)
		}
	}
	return out
}
