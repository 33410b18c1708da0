package dto

import (
	"time"

	"github.com/noah-isme/campus-cms-api/internal/models"
)

// WorkloadQuery scopes the workload report.
type WorkloadQuery struct {
	Semester     int    `json:"semester" validate:"required,min=1,max=8" binding:"required,min=1,max=8"`
	AcademicYear string `json:"academicYear" validate:"required" binding:"required"`
}

// WorkloadReport is the cached aggregate of faculty teaching loads.
type WorkloadReport struct {
	Semester     int                     `json:"semester"`
	AcademicYear string                  `json:"academicYear"`
	GeneratedAt  time.Time               `json:"generatedAt"`
	Records      []models.WorkloadRecord `json:"records"`
}
