package models

import (
	"fmt"
	"time"
)

// ChatRoom is the conversation context of one (student, alumni) pair.
// At most one room exists per ordered pair; rooms are deactivated, never
// deleted. Messages are not linked by foreign key: a room's history is the
// set of messages exchanged between its two participants.
type ChatRoom struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	StudentID     uint       `gorm:"not null;uniqueIndex:idx_chat_rooms_pair" json:"studentId"`
	AlumniID      uint       `gorm:"not null;uniqueIndex:idx_chat_rooms_pair;index" json:"alumniId"`
	Student       *User      `gorm:"foreignKey:StudentID" json:"-"`
	Alumni        *User      `gorm:"foreignKey:AlumniID" json:"-"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastMessageAt *time.Time `json:"lastMessageAt"`
	IsActive      bool       `gorm:"not null;default:true" json:"isActive"`
}

// RoomName is the human-readable name used by clients.
func (r *ChatRoom) RoomName() string {
	return fmt.Sprintf("chat_%d_%d", r.StudentID, r.AlumniID)
}

// IsParticipant reports whether userID is the student or the alumni of the room.
func (r *ChatRoom) IsParticipant(userID uint) bool {
	if r == nil || userID == 0 {
		return false
	}
	return userID == r.StudentID || userID == r.AlumniID
}

// OtherParticipant returns the counterpart of userID. The second result is
// false when userID is not in the room.
func (r *ChatRoom) OtherParticipant(userID uint) (uint, bool) {
	switch {
	case !r.IsParticipant(userID):
		return 0, false
	case userID == r.StudentID:
		return r.AlumniID, true
	default:
		return r.StudentID, true
	}
}
