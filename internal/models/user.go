package models

import (
	"strings"
	"time"

	"github.com/lib/pq" // pq.StringArray for the skills column
)

// Role is the discriminant of a User. It is fixed at creation time.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleAlumni  Role = "ALUMNI"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole accepts any casing and returns false for unknown roles.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleStudent, RoleAlumni, RoleAdmin:
		return r, true
	default:
		return "", false
	}
}

// User is a platform account. The role-specific payload lives in exactly one
// of Student or Alumni (or neither, for admins), so callers switch on Role
// instead of relying on subtypes.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FullName     string    `gorm:"type:varchar(255);not null" json:"fullName"`
	Role         Role      `gorm:"type:varchar(16);not null;index" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`

	Student *StudentDetails `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Alumni  *AlumniDetails  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"alumni,omitempty"`
}

// StudentDetails is the STUDENT payload of a User.
type StudentDetails struct {
	UserID         uint   `gorm:"primaryKey;autoIncrement:false" json:"-"`
	EnrollmentYear int    `json:"enrollmentYear,omitempty"`
	Major          string `gorm:"type:varchar(200)" json:"major,omitempty"`
}

// AlumniDetails is the ALUMNI payload of a User.
type AlumniDetails struct {
	UserID                uint           `gorm:"primaryKey;autoIncrement:false" json:"-"`
	GraduationYear        int            `json:"graduationYear,omitempty"`
	Company               string         `gorm:"type:varchar(200);index" json:"company,omitempty"`
	Position              string         `gorm:"type:varchar(200)" json:"position,omitempty"`
	Bio                   string         `gorm:"type:varchar(1000)" json:"bio,omitempty"`
	Skills                pq.StringArray `gorm:"type:text[]" json:"skills"`
	AvailableForMentoring bool           `gorm:"not null" json:"availableForMentoring"`
	LinkedIn              string         `gorm:"type:varchar(200)" json:"linkedin,omitempty"`
}

func (u *User) IsStudent() bool { return u != nil && u.Role == RoleStudent }
func (u *User) IsAlumni() bool  { return u != nil && u.Role == RoleAlumni }
func (u *User) IsAdmin() bool   { return u != nil && u.Role == RoleAdmin }

// NormalizeDetails drops whichever payload does not match the role.
func (u *User) NormalizeDetails() {
	switch u.Role {
	case RoleStudent:
		u.Alumni = nil
		if u.Student == nil {
			u.Student = &StudentDetails{}
		}
	case RoleAlumni:
		u.Student = nil
		if u.Alumni == nil {
			u.Alumni = &AlumniDetails{AvailableForMentoring: true}
		}
	default:
		u.Student = nil
		u.Alumni = nil
	}
}

// AlumniFilter narrows the alumni directory. Only available alumni are ever
// listed; Skill takes precedence over Company when both are set.
type AlumniFilter struct {
	Skill   string
	Company string
}
