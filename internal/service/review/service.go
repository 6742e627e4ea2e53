package review

import (
	"context"

	"github.com/google/uuid"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
	"github.com/dangkhoa18052004/hospital-api/internal/repository"
	"github.com/dangkhoa18052004/hospital-api/pkg/errors"
)

type Service struct {
	reviews      repository.ReviewRepository
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
}

func NewService(reviews repository.ReviewRepository, appointments repository.AppointmentRepository, doctors repository.DoctorRepository) *Service {
	return &Service{reviews: reviews, appointments: appointments, doctors: doctors}
}

// Create accepts one review per patient per completed appointment and
// refreshes the doctor's aggregate rating.
func (s *Service) Create(ctx context.Context, patientID uuid.UUID, req *model.CreateReviewRequest) (*model.Review, error) {
	appt, err := s.appointments.Get(ctx, req.AppointmentID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if appt == nil || appt.PatientID != patientID {
		return nil, errors.NewNotFound("appointment", nil)
	}
	if appt.Status != model.AppointmentStatusCompleted {
		return nil, errors.NewInvalidState("only completed appointments can be reviewed", nil)
	}

	existing, err := s.reviews.GetByAppointmentAndPatient(ctx, req.AppointmentID, patientID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if existing != nil {
		return nil, errors.NewConflict("appointment already reviewed", nil)
	}

	review := &model.Review{
		AppointmentID: req.AppointmentID,
		PatientID:     patientID,
		DoctorID:      appt.DoctorID,
		Rating:        req.Rating,
		Comment:       req.Comment,
		IsAnonymous:   req.IsAnonymous,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, errors.NewInternal(err)
	}

	avg, count, err := s.reviews.RatingStats(ctx, appt.DoctorID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := s.doctors.UpdateRating(ctx, appt.DoctorID, avg, count); err != nil {
		return nil, errors.NewInternal(err)
	}

	return review, nil
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Review, error) {
	reviews, err := s.reviews.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return reviews, nil
}
