package models

import "time"

// Message is a single chat line. It is created on send and mutated once,
// when the recipient reads it.
type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SenderID    uint      `gorm:"not null;index:idx_messages_pair_read,priority:1" json:"senderId"`
	RecipientID uint      `gorm:"not null;index:idx_messages_pair_read,priority:2;index" json:"recipientId"`
	Sender      *User     `gorm:"foreignKey:SenderID" json:"-"`
	Recipient   *User     `gorm:"foreignKey:RecipientID" json:"-"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Read        bool      `gorm:"column:is_read;not null;default:false;index:idx_messages_pair_read,priority:3" json:"isRead"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
}
