package models

// Faculty is an instructor identity consumed by the make-up core.
type Faculty struct {
	ID         string  `db:"id" json:"id"`
	FacultyNo  string  `db:"faculty_no" json:"faculty_no"`
	FullName   string  `db:"full_name" json:"full_name"`
	Department *string `db:"department" json:"department,omitempty"`
	Phone      *string `db:"phone" json:"phone,omitempty"`
}

// Student is a learner identity consumed by the make-up core.
type Student struct {
	ID             string `db:"id" json:"id"`
	RegistrationNo string `db:"registration_no" json:"registration_no"`
	FullName       string `db:"full_name" json:"full_name"`
	Section        string `db:"section" json:"section"`
	Semester       int    `db:"semester" json:"semester"`
}

// Course ties a subject to its owning faculty. Enrollment membership lives in
// the course_students join table.
type Course struct {
	ID           string `db:"id" json:"id"`
	Code         string `db:"code" json:"code"`
	Name         string `db:"name" json:"name"`
	FacultyID    string `db:"faculty_id" json:"faculty_id"`
	HoursPerWeek int    `db:"hours_per_week" json:"hours_per_week"`
	MaxStudents  int    `db:"max_students" json:"max_students"`
}
