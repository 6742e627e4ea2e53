package medical

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
	"github.com/dangkhoa18052004/hospital-api/internal/repository"
	"github.com/dangkhoa18052004/hospital-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// Service writes and reads medical records. Completing an appointment
// is the only way a record is created.
type Service struct {
	records      repository.MedicalRecordRepository
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
}

func NewService(records repository.MedicalRecordRepository, appointments repository.AppointmentRepository, doctors repository.DoctorRepository) *Service {
	return &Service{records: records, appointments: appointments, doctors: doctors}
}

// CompleteAppointment moves a checked-in appointment to completed and
// writes the visit's medical record plus prescriptions in the same
// transaction.
func (s *Service) CompleteAppointment(ctx context.Context, appointmentID, doctorUserID uuid.UUID, req *model.CompleteAppointmentRequest) (*model.MedicalRecord, error) {
	doctor, err := s.doctors.GetByUserID(ctx, doctorUserID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if doctor == nil {
		return nil, errors.NewNotFound("doctor", nil)
	}

	appt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if appt == nil || appt.DoctorID != doctor.ID {
		return nil, errors.NewNotFound("appointment", nil)
	}
	if !model.CanTransition(appt.Status, model.AppointmentStatusCompleted) {
		return nil, errors.NewInvalidState(
			fmt.Sprintf("cannot complete an appointment that is %s", appt.Status), nil)
	}

	var nextVisit *time.Time
	if req.NextVisitDate != nil && *req.NextVisitDate != "" {
		d, err := time.Parse(dateLayout, *req.NextVisitDate)
		if err != nil {
			return nil, errors.NewValidation("invalid next_visit_date, expected YYYY-MM-DD", err)
		}
		nextVisit = &d
	}

	now := time.Now()
	recordCode, err := generateRecordCode()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	record := &model.MedicalRecord{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		RecordCode:    recordCode,
		AppointmentID: appt.ID,
		PatientID:     appt.PatientID,
		DoctorID:      appt.DoctorID,
		VisitDate:     appt.AppointmentDate,
		Diagnosis:     req.Diagnosis,
		Symptoms:      req.Symptoms,
		Treatment:     req.Treatment,
		Notes:         req.Notes,
		NextVisitDate: nextVisit,
		IsFollowUp:    nextVisit != nil,
	}

	prescriptions := make([]*model.Prescription, 0, len(req.Prescriptions))
	for _, p := range req.Prescriptions {
		prescriptions = append(prescriptions, &model.Prescription{
			ID:              uuid.New(),
			MedicalRecordID: record.ID,
			MedicationName:  p.MedicationName,
			Dosage:          p.Dosage,
			Frequency:       p.Frequency,
			Duration:        p.Duration,
			Quantity:        p.Quantity,
			Instructions:    p.Instructions,
			CreatedAt:       now,
		})
	}

	oldStatus := string(appt.Status)
	newStatus := string(model.AppointmentStatusCompleted)
	appt.Status = model.AppointmentStatusCompleted
	appt.CompletedAt = &now

	hist := &model.AppointmentHistory{
		AppointmentID: appt.ID,
		ChangedBy:     doctorUserID,
		OldStatus:     &oldStatus,
		NewStatus:     &newStatus,
	}

	if err := s.appointments.Complete(ctx, appt, hist, record, prescriptions); err != nil {
		return nil, errors.NewInternal(err)
	}
	return record, nil
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	record, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if record == nil {
		return nil, errors.NewNotFound("medical record", nil)
	}
	return record, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error) {
	records, err := s.records.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return records, nil
}

func (s *Service) ListPrescriptions(ctx context.Context, recordID uuid.UUID) ([]*model.Prescription, error) {
	if _, err := s.GetRecord(ctx, recordID); err != nil {
		return nil, err
	}
	prescriptions, err := s.records.ListPrescriptions(ctx, recordID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return prescriptions, nil
}

const recordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateRecordCode() (string, error) {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate record code: %w", err)
	}
	for i, b := range buf {
		buf[i] = recordAlphabet[int(b)%len(recordAlphabet)]
	}
	return "MR" + string(buf), nil
}
