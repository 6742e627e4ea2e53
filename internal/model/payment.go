package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment is the minimal ledger row the booking flow creates; the gateway
// protocol itself lives outside this service.
type Payment struct {
	Base
	PaymentCode   string        `db:"payment_code" json:"payment_code"`
	AppointmentID uuid.UUID     `db:"appointment_id" json:"appointment_id"`
	PatientID     uuid.UUID     `db:"patient_id" json:"patient_id"`
	Amount        float64       `db:"amount" json:"amount"`
	Method        string        `db:"payment_method" json:"payment_method,omitempty"`
	Status        PaymentStatus `db:"payment_status" json:"payment_status"`
	TransactionID *string       `db:"transaction_id" json:"transaction_id,omitempty"`
	PaidAt        *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
}
