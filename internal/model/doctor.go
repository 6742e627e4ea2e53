package model

import (
	"github.com/google/uuid"
)

type Doctor struct {
	Base
	UserID          uuid.UUID `db:"user_id" json:"user_id"`
	DepartmentID    uuid.UUID `db:"department_id" json:"department_id"`
	LicenseNumber   string    `db:"license_number" json:"license_number"`
	Specialization  string    `db:"specialization" json:"specialization"`
	ExperienceYears int       `db:"experience_years" json:"experience_years"`
	Bio             string    `db:"bio" json:"bio,omitempty"`
	ConsultationFee float64   `db:"consultation_fee" json:"consultation_fee"`
	Rating          float64   `db:"rating" json:"rating"`
	TotalReviews    int       `db:"total_reviews" json:"total_reviews"`
	IsAvailable     bool      `db:"is_available" json:"is_available"`
}

type Department struct {
	Base
	Name         string `db:"name" json:"name"`
	Description  string `db:"description" json:"description,omitempty"`
	DisplayOrder int    `db:"display_order" json:"display_order"`
	IsActive     bool   `db:"is_active" json:"is_active"`
}

// Service is a bookable examination service offered by a department.
type Service struct {
	Base
	Name            string    `db:"name" json:"name"`
	Description     string    `db:"description" json:"description,omitempty"`
	DepartmentID    uuid.UUID `db:"department_id" json:"department_id"`
	Price           float64   `db:"price" json:"price"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	IsActive        bool      `db:"is_active" json:"is_active"`
}
