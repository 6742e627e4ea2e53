package model

import (
	"github.com/google/uuid"
)

type Patient struct {
	Base
	UserID                uuid.UUID `db:"user_id" json:"user_id"`
	PatientCode           string    `db:"patient_code" json:"patient_code"`
	BloodType             string    `db:"blood_type" json:"blood_type,omitempty"`
	Allergies             string    `db:"allergies" json:"allergies,omitempty"`
	MedicalNotes          string    `db:"medical_notes" json:"medical_notes,omitempty"`
	EmergencyContactName  string    `db:"emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string    `db:"emergency_contact_phone" json:"emergency_contact_phone,omitempty"`
	InsuranceNumber       string    `db:"insurance_number" json:"insurance_number,omitempty"`
}
