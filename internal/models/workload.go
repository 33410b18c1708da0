package models

import "time"

// WorkloadStatus classifies a faculty member's weekly contact hours.
type WorkloadStatus string

const (
	WorkloadNormal     WorkloadStatus = "NORMAL"
	WorkloadOverloaded WorkloadStatus = "OVERLOADED"
	WorkloadUnderload  WorkloadStatus = "UNDERLOAD"
)

// WorkloadRecord aggregates a faculty member's teaching load for a semester.
// One row per (faculty, semester, academic year).
type WorkloadRecord struct {
	ID             string         `db:"id" json:"id"`
	FacultyID      string         `db:"faculty_id" json:"faculty_id"`
	FacultyName    string         `db:"faculty_name" json:"faculty_name"`
	Semester       int            `db:"semester" json:"semester"`
	AcademicYear   string         `db:"academic_year" json:"academic_year"`
	TotalCourses   int            `db:"total_courses" json:"total_courses"`
	TotalHoursWeek int            `db:"total_hours_week" json:"total_hours_week"`
	TotalStudents  int            `db:"total_students" json:"total_students"`
	Status         WorkloadStatus `db:"status" json:"status"`
	CalculatedOn   time.Time      `db:"calculated_on" json:"calculated_on"`
}
