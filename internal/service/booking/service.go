package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
	"github.com/dangkhoa18052004/hospital-api/internal/repository"
	"github.com/dangkhoa18052004/hospital-api/internal/service/setting"
	"github.com/dangkhoa18052004/hospital-api/pkg/errors"
	"github.com/dangkhoa18052004/hospital-api/pkg/logger"
	"github.com/dangkhoa18052004/hospital-api/pkg/metrics"
)

const dateLayout = "2006-01-02"

// Service is the booking core: slot computation, conflict arbitration,
// reschedule and cancellation. All appointment writes go through it.
type Service struct {
	appointments repository.AppointmentRepository
	schedules    repository.ScheduleRepository
	doctors      repository.DoctorRepository
	payments     repository.PaymentRepository
	settings     *setting.Service
	metrics      *metrics.Metrics
	logger       *logger.Logger
	location     *time.Location
}

func NewService(
	appointments repository.AppointmentRepository,
	schedules repository.ScheduleRepository,
	doctors repository.DoctorRepository,
	payments repository.PaymentRepository,
	settings *setting.Service,
	m *metrics.Metrics,
	l *logger.Logger,
	location *time.Location,
) *Service {
	return &Service{
		appointments: appointments,
		schedules:    schedules,
		doctors:      doctors,
		payments:     payments,
		settings:     settings,
		metrics:      m,
		logger:       l,
		location:     location,
	}
}

// GetAvailableSlots returns the open slots for a doctor on a date. An
// unscheduled day yields an empty list, not an error. The result is
// advisory; the authoritative check happens inside Book's transaction.
func (s *Service) GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, dateStr string) ([]*model.Slot, error) {
	start := time.Now()
	defer func() {
		s.metrics.SlotQueryDuration.Observe(time.Since(start).Seconds())
	}()

	date, err := time.ParseInLocation(dateLayout, dateStr, s.location)
	if err != nil {
		return nil, errors.NewValidation("invalid date format, expected YYYY-MM-DD", err)
	}

	windows, err := s.schedules.ListWeeklyAvailability(ctx, doctorID, dayOfWeek(date))
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	leave, err := s.schedules.GetLeave(ctx, doctorID, date)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	booked, err := s.appointments.ActiveCountsByTime(ctx, doctorID, date)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	slots, err := computeSlots(windows, leave, booked, s.settings.SlotLengthMinutes(ctx))
	if err != nil {
		return nil, errors.NewValidation("invalid schedule data", err)
	}
	return slots, nil
}

// Book commits a patient's request for one (doctor, date, time) slot.
// Availability is re-derived inside the slot-locked transaction, so two
// concurrent attempts on the last opening resolve to exactly one success
// and one conflict.
func (s *Service) Book(ctx context.Context, patientID uuid.UUID, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	date, moment, err := s.parseSlotMoment(req.AppointmentDate, req.AppointmentTime)
	if err != nil {
		s.metrics.BookingsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if moment.Before(time.Now().In(s.location)) {
		s.metrics.BookingsTotal.WithLabelValues("invalid").Inc()
		return nil, errors.NewValidation("cannot book an appointment in the past", nil)
	}

	doctor, err := s.doctors.Get(ctx, req.DoctorID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if doctor == nil || !doctor.IsAvailable {
		s.metrics.BookingsTotal.WithLabelValues("not_found").Inc()
		return nil, errors.NewNotFound("doctor", nil)
	}

	svc, err := s.doctors.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if svc == nil || !svc.IsActive {
		s.metrics.BookingsTotal.WithLabelValues("not_found").Inc()
		return nil, errors.NewNotFound("service", nil)
	}

	appt, err := s.bookOnce(ctx, patientID, doctor, svc, date, req)
	if err != nil && repository.IsUniqueViolation(err) {
		// code collision, one retry with a fresh code
		appt, err = s.bookOnce(ctx, patientID, doctor, svc, date, req)
	}
	if err != nil {
		if errors.IsCode(err, errors.ErrConflict) {
			s.metrics.BookingsTotal.WithLabelValues("conflict").Inc()
			s.metrics.BookingConflicts.Inc()
		} else {
			s.metrics.BookingsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	s.metrics.BookingsTotal.WithLabelValues("success").Inc()
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID.String(),
		"appointment_code", appt.AppointmentCode,
		"doctor_id", appt.DoctorID.String(),
	)
	return appt, nil
}

func (s *Service) bookOnce(ctx context.Context, patientID uuid.UUID, doctor *model.Doctor, svc *model.Service, date time.Time, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	code, err := generateCode()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	now := time.Now()
	appt := &model.Appointment{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		AppointmentCode: code,
		PatientID:       patientID,
		DoctorID:        doctor.ID,
		DepartmentID:    doctor.DepartmentID,
		ServiceID:       svc.ID,
		AppointmentDate: date,
		AppointmentTime: req.AppointmentTime,
		Status:          model.AppointmentStatusPending,
		Reason:          req.Reason,
		Symptoms:        req.Symptoms,
	}

	err = s.appointments.WithSlotLock(ctx, doctor.ID, date, req.AppointmentTime, func(tx repository.BookingTx) error {
		capacity, err := s.slotCapacity(ctx, tx, doctor.ID, date, req.AppointmentTime)
		if err != nil {
			return err
		}
		if capacity == 0 {
			return errors.NewValidation("requested time is outside the doctor's availability", nil)
		}

		count, err := tx.CountActive(doctor.ID, date, req.AppointmentTime, nil)
		if err != nil {
			return errors.NewInternal(err)
		}
		if count >= capacity {
			return errors.NewConflict("slot is already fully booked", nil)
		}

		if err := tx.InsertAppointment(appt); err != nil {
			return err
		}

		payment := &model.Payment{
			Base: model.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			PaymentCode:   "PY" + appt.AppointmentCode[2:],
			AppointmentID: appt.ID,
			PatientID:     patientID,
			Amount:        svc.Price + doctor.ConsultationFee,
			Status:        model.PaymentStatusPending,
		}
		if err := tx.InsertPayment(payment); err != nil {
			return err
		}

		return tx.InsertOutboxEvent(s.appointmentEvent(model.EventAppointmentBooked, appt))
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// Reschedule moves an appointment to a new slot. The conflict check runs
// in the new slot's locked transaction with the moved appointment itself
// excluded, and the history row commits atomically with the move.
func (s *Service) Reschedule(ctx context.Context, appointmentID, patientID uuid.UUID, req *model.RescheduleAppointmentRequest) (*model.Appointment, error) {
	appt, err := s.ownedActiveAppointment(ctx, appointmentID, patientID)
	if err != nil {
		return nil, err
	}

	newDate, moment, err := s.parseSlotMoment(req.NewDate, req.NewTime)
	if err != nil {
		return nil, err
	}
	if moment.Before(time.Now().In(s.location)) {
		return nil, errors.NewValidation("cannot reschedule into the past", nil)
	}

	oldDate := appt.AppointmentDate
	oldTime := appt.AppointmentTime

	err = s.appointments.WithSlotLock(ctx, appt.DoctorID, newDate, req.NewTime, func(tx repository.BookingTx) error {
		capacity, err := s.slotCapacity(ctx, tx, appt.DoctorID, newDate, req.NewTime)
		if err != nil {
			return err
		}
		if capacity == 0 {
			return errors.NewValidation("requested time is outside the doctor's availability", nil)
		}

		count, err := tx.CountActive(appt.DoctorID, newDate, req.NewTime, &appt.ID)
		if err != nil {
			return errors.NewInternal(err)
		}
		if count >= capacity {
			return errors.NewConflict("slot is already fully booked", nil)
		}

		status := string(appt.Status)
		hist := &model.AppointmentHistory{
			AppointmentID: appt.ID,
			ChangedBy:     patientID,
			OldDate:       &oldDate,
			OldTime:       &oldTime,
			OldStatus:     &status,
			NewDate:       &newDate,
			NewTime:       &req.NewTime,
			NewStatus:     &status,
			ChangeReason:  req.Reason,
		}
		if err := tx.InsertHistory(hist); err != nil {
			return err
		}
		return tx.UpdateSchedule(appt.ID, newDate, req.NewTime)
	})
	if err != nil {
		if errors.IsCode(err, errors.ErrConflict) {
			s.metrics.BookingConflicts.Inc()
		}
		return nil, err
	}

	appt.AppointmentDate = newDate
	appt.AppointmentTime = req.NewTime
	s.logger.Info("appointment rescheduled",
		"appointment_id", appt.ID.String(),
		"new_date", req.NewDate,
		"new_time", req.NewTime,
	)
	return appt, nil
}

// Cancel rejects requests inside the configured lead-time window.
func (s *Service) Cancel(ctx context.Context, appointmentID, patientID uuid.UUID, reason string) (*model.Appointment, error) {
	appt, err := s.ownedActiveAppointment(ctx, appointmentID, patientID)
	if err != nil {
		return nil, err
	}

	_, moment, err := s.parseSlotMoment(appt.AppointmentDate.Format(dateLayout), appt.AppointmentTime)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	leadTime := time.Duration(s.settings.CancellationHours(ctx)) * time.Hour
	if time.Now().In(s.location).Add(leadTime).After(moment) {
		return nil, errors.NewPolicyViolation(
			fmt.Sprintf("appointments must be cancelled at least %d hours in advance", s.settings.CancellationHours(ctx)), nil)
	}

	return s.transition(ctx, appt, model.AppointmentStatusCancelled, patientID, reason)
}

// Confirm settles the pending payment and moves the appointment from
// pending to confirmed.
func (s *Service) Confirm(ctx context.Context, appointmentID, changedBy uuid.UUID, transactionID string) (*model.Appointment, error) {
	appt, err := s.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(appt.Status, model.AppointmentStatusConfirmed) {
		return nil, errors.NewInvalidState(
			fmt.Sprintf("cannot move appointment from %s to %s", appt.Status, model.AppointmentStatusConfirmed), nil)
	}

	payment, err := s.payments.GetByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if payment != nil && payment.Status == model.PaymentStatusPending {
		if err := s.payments.MarkCompleted(ctx, payment.ID, transactionID); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	return s.transition(ctx, appt, model.AppointmentStatusConfirmed, changedBy, "")
}

func (s *Service) CheckIn(ctx context.Context, appointmentID, changedBy uuid.UUID) (*model.Appointment, error) {
	return s.transitionByID(ctx, appointmentID, model.AppointmentStatusCheckedIn, changedBy, "")
}

func (s *Service) MarkNoShow(ctx context.Context, appointmentID, changedBy uuid.UUID) (*model.Appointment, error) {
	return s.transitionByID(ctx, appointmentID, model.AppointmentStatusNoShow, changedBy, "")
}

func (s *Service) Get(ctx context.Context, appointmentID uuid.UUID) (*model.Appointment, error) {
	appt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if appt == nil {
		return nil, errors.NewNotFound("appointment", nil)
	}
	return appt, nil
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appts, err := s.appointments.List(ctx, filters)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return appts, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	appts, err := s.appointments.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return appts, nil
}

func (s *Service) History(ctx context.Context, appointmentID uuid.UUID) ([]*model.AppointmentHistory, error) {
	if _, err := s.Get(ctx, appointmentID); err != nil {
		return nil, err
	}
	hist, err := s.appointments.ListHistory(ctx, appointmentID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return hist, nil
}

func (s *Service) transitionByID(ctx context.Context, appointmentID uuid.UUID, to model.AppointmentStatus, changedBy uuid.UUID, reason string) (*model.Appointment, error) {
	appt, err := s.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, appt, to, changedBy, reason)
}

func (s *Service) transition(ctx context.Context, appt *model.Appointment, to model.AppointmentStatus, changedBy uuid.UUID, reason string) (*model.Appointment, error) {
	if !model.CanTransition(appt.Status, to) {
		return nil, errors.NewInvalidState(
			fmt.Sprintf("cannot move appointment from %s to %s", appt.Status, to), nil)
	}

	oldStatus := string(appt.Status)
	newStatus := string(to)
	now := time.Now()

	appt.Status = to
	switch to {
	case model.AppointmentStatusCancelled:
		appt.CancelledAt = &now
		appt.CancelledBy = &changedBy
		if reason != "" {
			appt.CancellationReason = &reason
		}
	case model.AppointmentStatusCheckedIn:
		appt.CheckedInAt = &now
	}

	hist := &model.AppointmentHistory{
		AppointmentID: appt.ID,
		ChangedBy:     changedBy,
		OldStatus:     &oldStatus,
		NewStatus:     &newStatus,
		ChangeReason:  reason,
	}

	var evt *model.OutboxEvent
	if to == model.AppointmentStatusCancelled {
		evt = s.appointmentEvent(model.EventAppointmentCancelled, appt)
	}

	if err := s.appointments.UpdateStatus(ctx, appt, hist, evt); err != nil {
		return nil, errors.NewInternal(err)
	}

	s.logger.Info("appointment status changed",
		"appointment_id", appt.ID.String(),
		"from", oldStatus,
		"to", newStatus,
	)
	return appt, nil
}

// ownedActiveAppointment loads the appointment, hides other patients'
// rows behind not-found, and requires a pending or confirmed status.
func (s *Service) ownedActiveAppointment(ctx context.Context, appointmentID, patientID uuid.UUID) (*model.Appointment, error) {
	appt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if appt == nil || appt.PatientID != patientID {
		return nil, errors.NewNotFound("appointment", nil)
	}
	if appt.Status != model.AppointmentStatusPending && appt.Status != model.AppointmentStatusConfirmed {
		return nil, errors.NewInvalidState(
			fmt.Sprintf("appointment is %s", appt.Status), nil)
	}
	return appt, nil
}

// slotCapacity re-derives the capacity at one time key from schedule
// rows read inside the booking transaction.
func (s *Service) slotCapacity(ctx context.Context, tx repository.BookingTx, doctorID uuid.UUID, date time.Time, timeKey string) (int, error) {
	windows, err := tx.ListActiveWindows(doctorID, dayOfWeek(date))
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	leave, err := tx.GetLeave(doctorID, date)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	capacity, err := capacityAt(windows, leave, timeKey, s.settings.SlotLengthMinutes(ctx))
	if err != nil {
		return 0, errors.NewValidation("invalid time format, expected HH:MM", err)
	}
	return capacity, nil
}

func (s *Service) parseSlotMoment(dateStr, timeStr string) (time.Time, time.Time, error) {
	date, err := time.ParseInLocation(dateLayout, dateStr, s.location)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewValidation("invalid date format, expected YYYY-MM-DD", err)
	}
	minutes, err := model.ParseClock(timeStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewValidation("invalid time format, expected HH:MM", err)
	}
	return date, date.Add(time.Duration(minutes) * time.Minute), nil
}

func (s *Service) appointmentEvent(eventType string, appt *model.Appointment) *model.OutboxEvent {
	payload, _ := json.Marshal(&model.AppointmentEvent{
		AppointmentID:   appt.ID,
		AppointmentCode: appt.AppointmentCode,
		DoctorID:        appt.DoctorID,
		PatientID:       appt.PatientID,
		Date:            appt.AppointmentDate.Format(dateLayout),
		Time:            appt.AppointmentTime,
	})
	return &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	}
}
