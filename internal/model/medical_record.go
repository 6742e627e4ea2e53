package model

import (
	"time"

	"github.com/google/uuid"
)

type MedicalRecord struct {
	Base
	RecordCode    string     `db:"record_code" json:"record_code"`
	AppointmentID uuid.UUID  `db:"appointment_id" json:"appointment_id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	VisitDate     time.Time  `db:"visit_date" json:"visit_date"`
	Diagnosis     string     `db:"diagnosis" json:"diagnosis,omitempty"`
	Symptoms      string     `db:"symptoms" json:"symptoms,omitempty"`
	Treatment     string     `db:"treatment" json:"treatment,omitempty"`
	LabResults    string     `db:"lab_results" json:"lab_results,omitempty"`
	Notes         string     `db:"notes" json:"notes,omitempty"`
	NextVisitDate *time.Time `db:"next_visit_date" json:"next_visit_date,omitempty"`
	IsFollowUp    bool       `db:"is_follow_up" json:"is_follow_up"`
}

type Prescription struct {
	ID              uuid.UUID `db:"id" json:"id"`
	MedicalRecordID uuid.UUID `db:"medical_record_id" json:"medical_record_id"`
	MedicationName  string    `db:"medication_name" json:"medication_name"`
	Dosage          string    `db:"dosage" json:"dosage,omitempty"`
	Frequency       string    `db:"frequency" json:"frequency,omitempty"`
	Duration        string    `db:"duration" json:"duration,omitempty"`
	Quantity        int       `db:"quantity" json:"quantity"`
	Instructions    string    `db:"instructions" json:"instructions,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type CompleteAppointmentRequest struct {
	Diagnosis     string                      `json:"diagnosis" binding:"required,max=2000"`
	Symptoms      string                      `json:"symptoms" binding:"max=2000"`
	Treatment     string                      `json:"treatment" binding:"max=2000"`
	Notes         string                      `json:"notes" binding:"max=2000"`
	NextVisitDate *string                     `json:"next_visit_date"`
	Prescriptions []CreatePrescriptionRequest `json:"prescriptions" binding:"dive"`
}

type CreatePrescriptionRequest struct {
	MedicationName string `json:"medication_name" binding:"required,max=200"`
	Dosage         string `json:"dosage" binding:"max=100"`
	Frequency      string `json:"frequency" binding:"max=100"`
	Duration       string `json:"duration" binding:"max=100"`
	Quantity       int    `json:"quantity" binding:"min=0"`
	Instructions   string `json:"instructions" binding:"max=500"`
}
