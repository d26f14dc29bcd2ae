package models

import "time"

const (
	EnvelopeMessage = "message"
	EnvelopeSystem  = "system"
)

// ChatEnvelope is the JSON frame pushed to websocket clients and returned by
// the history endpoint. System notices only carry Type, Content and SentAt.
type ChatEnvelope struct {
	Type          string    `json:"type"`
	ID            uint      `json:"id,omitempty"`
	Content       string    `json:"content"`
	SenderID      uint      `json:"senderId,omitempty"`
	SenderName    string    `json:"senderName,omitempty"`
	SenderRole    Role      `json:"senderRole,omitempty"`
	SentAt        time.Time `json:"sentAt"`
	IsRead        *bool     `json:"isRead,omitempty"`
	RecipientID   uint      `json:"recipientId,omitempty"`
	RecipientName string    `json:"recipientName,omitempty"`
}

// InboundMessage is what a websocket client sends.
type InboundMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// NewMessageEnvelope builds the "message" frame. sender and recipient may be
// nil, in which case only their ids are filled in.
func NewMessageEnvelope(m *Message, sender, recipient *User) ChatEnvelope {
	read := m.Read
	env := ChatEnvelope{
		Type:        EnvelopeMessage,
		ID:          m.ID,
		Content:     m.Content,
		SenderID:    m.SenderID,
		SentAt:      m.CreatedAt,
		IsRead:      &read,
		RecipientID: m.RecipientID,
	}
	if sender != nil {
		env.SenderName = sender.FullName
		env.SenderRole = sender.Role
	}
	if recipient != nil {
		env.RecipientName = recipient.FullName
	}
	return env
}

func NewSystemEnvelope(content string, at time.Time) ChatEnvelope {
	return ChatEnvelope{Type: EnvelopeSystem, Content: content, SentAt: at}
}
