package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dangkhoa18052004/hospital-api/internal/email"
	"github.com/dangkhoa18052004/hospital-api/internal/model"
	"github.com/dangkhoa18052004/hospital-api/internal/repository"
	"github.com/dangkhoa18052004/hospital-api/pkg/errors"
	"github.com/dangkhoa18052004/hospital-api/pkg/logger"
)

// Service fans out booking lifecycle events to in-app notifications and
// best-effort email. It consumes events downstream of the outbox, so a
// delivery failure never affects the booking that produced it.
type Service struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	doctors       repository.DoctorRepository
	patients      repository.PatientRepository
	sender        email.Sender
	logger        *logger.Logger
}

func NewService(
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	sender email.Sender,
	l *logger.Logger,
) *Service {
	return &Service{
		notifications: notifications,
		users:         users,
		doctors:       doctors,
		patients:      patients,
		sender:        sender,
		logger:        l,
	}
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	list, err := s.notifications.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return list, nil
}

func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.notifications.MarkRead(ctx, id, userID); err != nil {
		return errors.NewNotFound("notification", err)
	}
	return nil
}

// HandleAppointmentEvent notifies both parties of a booking or
// cancellation.
func (s *Service) HandleAppointmentEvent(ctx context.Context, eventType string, evt *model.AppointmentEvent) error {
	var title, body string
	switch eventType {
	case model.EventAppointmentBooked:
		title = "Appointment booked"
		body = fmt.Sprintf("Appointment %s is scheduled for %s at %s.", evt.AppointmentCode, evt.Date, evt.Time)
	case model.EventAppointmentCancelled:
		title = "Appointment cancelled"
		body = fmt.Sprintf("Appointment %s on %s at %s has been cancelled.", evt.AppointmentCode, evt.Date, evt.Time)
	default:
		return fmt.Errorf("unknown event type %q", eventType)
	}

	userIDs, err := s.participantUserIDs(ctx, evt)
	if err != nil {
		return err
	}

	for _, userID := range userIDs {
		n := &model.Notification{
			UserID:        userID,
			Title:         title,
			Message:       body,
			Type:          model.NotificationTypeAppointment,
			ReferenceID:   &evt.AppointmentID,
			ReferenceType: "appointment",
		}
		if err := s.notifications.Create(ctx, n); err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}

		user, err := s.users.Get(ctx, userID)
		if err != nil || user == nil {
			continue
		}
		if err := s.sender.Send(user.Email, title, body); err != nil {
			s.logger.Warn("email delivery failed", "user_id", userID.String())
		}
	}
	return nil
}

func (s *Service) participantUserIDs(ctx context.Context, evt *model.AppointmentEvent) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	patient, err := s.patients.Get(ctx, evt.PatientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load patient: %w", err)
	}
	if patient != nil {
		ids = append(ids, patient.UserID)
	}

	doctor, err := s.doctors.Get(ctx, evt.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load doctor: %w", err)
	}
	if doctor != nil {
		ids = append(ids, doctor.UserID)
	}
	return ids, nil
}
