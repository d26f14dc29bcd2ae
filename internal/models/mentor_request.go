package models

import (
	"strings"
	"time"
)

// RequestStatus is the state of a MentorRequest. PENDING is the only
// non-terminal state.
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusAccepted RequestStatus = "ACCEPTED"
	StatusRejected RequestStatus = "REJECTED"
)

func ParseRequestStatus(s string) (RequestStatus, bool) {
	switch st := RequestStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusAccepted, StatusRejected:
		return st, true
	default:
		return "", false
	}
}

// IsTerminal reports whether no further transition is allowed.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// CanTransition reports whether the state machine allows s -> to.
func (s RequestStatus) CanTransition(to RequestStatus) bool {
	return s == StatusPending && to.IsTerminal()
}

// MentorRequest gates room creation: a room is opened when the alumni
// accepts the student's request.
type MentorRequest struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	StudentID uint          `gorm:"not null;index" json:"studentId"`
	AlumniID  uint          `gorm:"not null;index" json:"alumniId"`
	Student   *User         `gorm:"foreignKey:StudentID" json:"-"`
	Alumni    *User         `gorm:"foreignKey:AlumniID" json:"-"`
	Message   string        `gorm:"type:varchar(1000)" json:"message"`
	Status    RequestStatus `gorm:"type:varchar(16);not null;default:PENDING;index" json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// RequestFilter selects mentor requests for a listing.
type RequestFilter struct {
	StudentID uint
	AlumniID  uint
	Status    RequestStatus
}
