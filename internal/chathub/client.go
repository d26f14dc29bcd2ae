package chathub

import (
	"context"
	"errors"

	"mentorlink/backend/internal/models"
)

var (
	ErrClientClosed   = errors.New("chathub: client closed")
	ErrSendBufferFull = errors.New("chathub: client send buffer full")
)

// Client is one live connection of a user to a room. The hub only talks to
// clients through this interface, so tests can register in-memory fakes.
type Client interface {
	GetUserID() uint
	GetRoomID() uint
	// ConnID distinguishes two connections of the same user.
	ConnID() string

	// Deliver queues an envelope without blocking. It fails with
	// ErrClientClosed or ErrSendBufferFull.
	Deliver(env models.ChatEnvelope) error

	// Run starts the client's read and write pumps.
	Run()
	// Close stops the client and sends the close code to the peer. Calling it
	// more than once is a no-op.
	Close(code int, reason string)
}

// InboundHandler receives what a client reads from its peer.
type InboundHandler interface {
	HandleInbound(ctx context.Context, roomID, userID uint, msg models.InboundMessage)
	Disconnect(roomID, userID uint, client Client)
}
