package model

import (
	"github.com/google/uuid"
)

type Review struct {
	Base
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Rating        int       `db:"rating" json:"rating"`
	Comment       string    `db:"comment" json:"comment,omitempty"`
	IsAnonymous   bool      `db:"is_anonymous" json:"is_anonymous"`
}

type CreateReviewRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id" binding:"required"`
	Rating        int       `json:"rating" binding:"required,min=1,max=5"`
	Comment       string    `json:"comment" binding:"max=2000"`
	IsAnonymous   bool      `json:"is_anonymous"`
}
