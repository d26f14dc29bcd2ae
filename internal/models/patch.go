package models

import "strings"

// StudentPatch is a partial update of StudentDetails. Nil fields are kept.
type StudentPatch struct {
	EnrollmentYear *int    `json:"enrollmentYear"`
	Major          *string `json:"major"`
}

func (p *StudentPatch) Apply(d *StudentDetails) {
	if p == nil || d == nil {
		return
	}
	if p.EnrollmentYear != nil {
		d.EnrollmentYear = *p.EnrollmentYear
	}
	if p.Major != nil {
		d.Major = strings.TrimSpace(*p.Major)
	}
}

// AlumniPatch is a partial update of AlumniDetails. Nil fields are kept;
// a non-nil empty Skills clears the list.
type AlumniPatch struct {
	GraduationYear        *int     `json:"graduationYear"`
	Company               *string  `json:"company"`
	Position              *string  `json:"position"`
	Bio                   *string  `json:"bio"`
	Skills                []string `json:"skills"`
	AvailableForMentoring *bool    `json:"availableForMentoring"`
	LinkedIn              *string  `json:"linkedin"`
}

func (p *AlumniPatch) Apply(d *AlumniDetails) {
	if p == nil || d == nil {
		return
	}
	if p.GraduationYear != nil {
		d.GraduationYear = *p.GraduationYear
	}
	if p.Company != nil {
		d.Company = strings.TrimSpace(*p.Company)
	}
	if p.Position != nil {
		d.Position = strings.TrimSpace(*p.Position)
	}
	if p.Bio != nil {
		d.Bio = strings.TrimSpace(*p.Bio)
	}
	if p.Skills != nil {
		skills := make([]string, 0, len(p.Skills))
		for _, s := range p.Skills {
			if s = strings.TrimSpace(s); s != "" {
				skills = append(skills, s)
			}
		}
		d.Skills = skills
	}
	if p.AvailableForMentoring != nil {
		d.AvailableForMentoring = *p.AvailableForMentoring
	}
	if p.LinkedIn != nil {
		d.LinkedIn = strings.TrimSpace(*p.LinkedIn)
	}
}
