package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	}

	DoctorRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error)
		GetService(ctx context.Context, id uuid.UUID) (*model.Service, error)
		UpdateRating(ctx context.Context, doctorID uuid.UUID, rating float64, totalReviews int) error
	}

	PatientRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error)
	}

	// ScheduleRepository is the read/write store for a doctor's recurring
	// weekly windows and one-off leave exceptions. Absence of rows is not
	// an error: list methods return empty slices and GetLeave returns nil.
	ScheduleRepository interface {
		ListWeeklyAvailability(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) ([]*model.WeeklyAvailability, error)
		ListAllAvailability(ctx context.Context, doctorID uuid.UUID) ([]*model.WeeklyAvailability, error)
		GetAvailability(ctx context.Context, id uuid.UUID) (*model.WeeklyAvailability, error)
		CreateAvailability(ctx context.Context, wa *model.WeeklyAvailability) error
		UpdateAvailability(ctx context.Context, wa *model.WeeklyAvailability) error
		GetLeave(ctx context.Context, doctorID uuid.UUID, date time.Time) (*model.DoctorLeave, error)
		CreateLeave(ctx context.Context, leave *model.DoctorLeave) error
	}

	// BookingTx exposes the reads and writes available inside one
	// serialized booking transaction. All calls see and affect the same
	// transaction; the conflict re-derivation and the insert are atomic
	// relative to other writers holding the same slot key.
	BookingTx interface {
		ListActiveWindows(doctorID uuid.UUID, dayOfWeek int) ([]*model.WeeklyAvailability, error)
		GetLeave(doctorID uuid.UUID, date time.Time) (*model.DoctorLeave, error)
		CountActive(doctorID uuid.UUID, date time.Time, timeKey string, excludeID *uuid.UUID) (int, error)
		InsertAppointment(appt *model.Appointment) error
		UpdateSchedule(appointmentID uuid.UUID, newDate time.Time, newTime string) error
		InsertHistory(hist *model.AppointmentHistory) error
		InsertPayment(p *model.Payment) error
		InsertOutboxEvent(evt *model.OutboxEvent) error
	}

	// AppointmentRepository is the booking ledger. All mutation of
	// appointment rows goes through it.
	AppointmentRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		GetByCode(ctx context.Context, code string) (*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error)
		// ActiveCountsByTime buckets pending/confirmed appointments for a
		// doctor and date by their "HH:MM" time key.
		ActiveCountsByTime(ctx context.Context, doctorID uuid.UUID, date time.Time) (map[string]int, error)
		// WithSlotLock runs fn inside a transaction holding an advisory
		// lock scoped to the (doctor, date, time) slot key, serializing
		// conflicting writers for that key.
		WithSlotLock(ctx context.Context, doctorID uuid.UUID, date time.Time, timeKey string, fn func(tx BookingTx) error) error
		// UpdateStatus persists a status transition together with its
		// append-only history row and optional outbox event in one
		// transaction.
		UpdateStatus(ctx context.Context, appt *model.Appointment, hist *model.AppointmentHistory, evt *model.OutboxEvent) error
		// Complete marks the appointment completed and writes the medical
		// record plus prescriptions in the same transaction.
		Complete(ctx context.Context, appt *model.Appointment, hist *model.AppointmentHistory, record *model.MedicalRecord, prescriptions []*model.Prescription) error
		ListHistory(ctx context.Context, appointmentID uuid.UUID) ([]*model.AppointmentHistory, error)
	}

	MedicalRecordRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error)
		GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.MedicalRecord, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error)
		ListPrescriptions(ctx context.Context, recordID uuid.UUID) ([]*model.Prescription, error)
	}

	ReviewRepository interface {
		Create(ctx context.Context, review *model.Review) error
		GetByAppointmentAndPatient(ctx context.Context, appointmentID, patientID uuid.UUID) (*model.Review, error)
		ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Review, error)
		RatingStats(ctx context.Context, doctorID uuid.UUID) (avg float64, count int, err error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, n *model.Notification) error
		ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error)
		MarkRead(ctx context.Context, id, userID uuid.UUID) error
	}

	PaymentRepository interface {
		GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Payment, error)
		MarkCompleted(ctx context.Context, id uuid.UUID, transactionID string) error
	}

	SettingRepository interface {
		Get(ctx context.Context, key string) (*model.SystemSetting, error)
		Upsert(ctx context.Context, setting *model.SystemSetting) error
		List(ctx context.Context) ([]*model.SystemSetting, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingBatch(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkRetry(ctx context.Context, id uuid.UUID, errMsg string, retryAt time.Time) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
