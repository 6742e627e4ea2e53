package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
	"github.com/dangkhoa18052004/hospital-api/internal/repository"
	"github.com/dangkhoa18052004/hospital-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// Service manages a doctor's recurring weekly windows and one-off leave
// exceptions.
type Service struct {
	schedules repository.ScheduleRepository
	location  *time.Location
}

func NewService(schedules repository.ScheduleRepository, location *time.Location) *Service {
	return &Service{schedules: schedules, location: location}
}

func (s *Service) ListAvailability(ctx context.Context, doctorID uuid.UUID) ([]*model.WeeklyAvailability, error) {
	windows, err := s.schedules.ListAllAvailability(ctx, doctorID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return windows, nil
}

func (s *Service) CreateAvailability(ctx context.Context, doctorID uuid.UUID, req *model.CreateAvailabilityRequest) (*model.WeeklyAvailability, error) {
	if err := validateWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	// one window per (doctor, day, start time)
	existing, err := s.schedules.ListAllAvailability(ctx, doctorID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	for _, w := range existing {
		if w.DayOfWeek == req.DayOfWeek && w.StartTime == req.StartTime {
			return nil, errors.NewConflict("availability window already exists for this day and start time", nil)
		}
	}

	wa := &model.WeeklyAvailability{
		DoctorID:    doctorID,
		DayOfWeek:   req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		MaxPatients: req.MaxPatients,
		IsActive:    true,
	}
	if err := s.schedules.CreateAvailability(ctx, wa); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, errors.NewConflict("availability window already exists for this day and start time", nil)
		}
		return nil, errors.NewInternal(err)
	}
	return wa, nil
}

func (s *Service) UpdateAvailability(ctx context.Context, doctorID, availabilityID uuid.UUID, req *model.UpdateAvailabilityRequest) (*model.WeeklyAvailability, error) {
	wa, err := s.schedules.GetAvailability(ctx, availabilityID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if wa == nil || wa.DoctorID != doctorID {
		return nil, errors.NewNotFound("availability", nil)
	}

	if req.StartTime != nil {
		wa.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		wa.EndTime = *req.EndTime
	}
	if req.MaxPatients != nil {
		wa.MaxPatients = *req.MaxPatients
	}
	if req.IsActive != nil {
		wa.IsActive = *req.IsActive
	}

	if err := validateWindow(wa.StartTime, wa.EndTime); err != nil {
		return nil, err
	}
	if err := s.schedules.UpdateAvailability(ctx, wa); err != nil {
		return nil, errors.NewInternal(err)
	}
	return wa, nil
}

func (s *Service) CreateLeave(ctx context.Context, doctorID uuid.UUID, req *model.CreateLeaveRequest) (*model.DoctorLeave, error) {
	date, err := time.ParseInLocation(dateLayout, req.LeaveDate, s.location)
	if err != nil {
		return nil, errors.NewValidation("invalid leave_date, expected YYYY-MM-DD", err)
	}

	now := time.Now().In(s.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	if date.Before(today) {
		return nil, errors.NewValidation("leave_date cannot be in the past", nil)
	}

	if !req.IsFullDay {
		if req.StartTime == nil || req.EndTime == nil {
			return nil, errors.NewValidation("partial-day leave requires start_time and end_time", nil)
		}
		if err := validateWindow(*req.StartTime, *req.EndTime); err != nil {
			return nil, err
		}
	}

	leave := &model.DoctorLeave{
		DoctorID:  doctorID,
		LeaveDate: date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
		IsFullDay: req.IsFullDay,
	}
	if leave.IsFullDay {
		leave.StartTime = nil
		leave.EndTime = nil
	}
	if err := s.schedules.CreateLeave(ctx, leave); err != nil {
		return nil, errors.NewInternal(err)
	}
	return leave, nil
}

func validateWindow(start, end string) error {
	s, err := model.ParseClock(start)
	if err != nil {
		return errors.NewValidation("invalid start_time, expected HH:MM", err)
	}
	e, err := model.ParseClock(end)
	if err != nil {
		return errors.NewValidation("invalid end_time, expected HH:MM", err)
	}
	if s >= e {
		return errors.NewValidation("start_time must be before end_time", nil)
	}
	return nil
}
