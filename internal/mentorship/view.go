package mentorship

import (
	"time"

	"mentorlink/backend/internal/models"
)

// RequestView is the JSON shape of a request. A student sees the alumni
// profile only; alumni and admins also see the student's details.
type RequestView struct {
	ID        uint                 `json:"id"`
	StudentID uint                 `json:"studentId"`
	AlumniID  uint                 `json:"alumniId"`
	Message   string               `json:"message"`
	Status    models.RequestStatus `json:"status"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`

	StudentName string       `json:"studentName,omitempty"`
	Student     *models.User `json:"student,omitempty"`
	AlumniName  string       `json:"alumniName,omitempty"`
	Alumni      *models.User `json:"alumni,omitempty"`
}

func ViewFor(actor *models.User, r *models.MentorRequest) RequestView {
	v := RequestView{
		ID:        r.ID,
		StudentID: r.StudentID,
		AlumniID:  r.AlumniID,
		Message:   r.Message,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Alumni != nil {
		v.AlumniName = r.Alumni.FullName
		v.Alumni = r.Alumni
	}
	if r.Student != nil {
		v.StudentName = r.Student.FullName
		if !actor.IsStudent() {
			v.Student = r.Student
		}
	}
	return v
}

func ViewsFor(actor *models.User, reqs []models.MentorRequest) []RequestView {
	out := make([]RequestView, 0, len(reqs))
	for i := range reqs {
		out = append(out, ViewFor(actor, &reqs[i]))
	}
	return out
}
