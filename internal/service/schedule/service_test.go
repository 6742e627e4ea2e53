package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
	"github.com/dangkhoa18052004/hospital-api/pkg/errors"
)

type fakeRepo struct {
	availability map[uuid.UUID]*model.WeeklyAvailability
	leaves       []*model.DoctorLeave
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{availability: make(map[uuid.UUID]*model.WeeklyAvailability)}
}

func (f *fakeRepo) ListWeeklyAvailability(_ context.Context, _ uuid.UUID, _ int) ([]*model.WeeklyAvailability, error) {
	return nil, nil
}

func (f *fakeRepo) ListAllAvailability(_ context.Context, doctorID uuid.UUID) ([]*model.WeeklyAvailability, error) {
	var out []*model.WeeklyAvailability
	for _, wa := range f.availability {
		if wa.DoctorID == doctorID {
			out = append(out, wa)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetAvailability(_ context.Context, id uuid.UUID) (*model.WeeklyAvailability, error) {
	return f.availability[id], nil
}

func (f *fakeRepo) CreateAvailability(_ context.Context, wa *model.WeeklyAvailability) error {
	if wa.ID == uuid.Nil {
		wa.ID = uuid.New()
	}
	f.availability[wa.ID] = wa
	return nil
}

func (f *fakeRepo) UpdateAvailability(_ context.Context, wa *model.WeeklyAvailability) error {
	f.availability[wa.ID] = wa
	return nil
}

func (f *fakeRepo) GetLeave(_ context.Context, _ uuid.UUID, _ time.Time) (*model.DoctorLeave, error) {
	return nil, nil
}

func (f *fakeRepo) CreateLeave(_ context.Context, leave *model.DoctorLeave) error {
	f.leaves = append(f.leaves, leave)
	return nil
}

func TestCreateAvailabilityValidatesWindow(t *testing.T) {
	svc := NewService(newFakeRepo(), time.UTC)
	ctx := context.Background()
	doctorID := uuid.New()

	_, err := svc.CreateAvailability(ctx, doctorID, &model.CreateAvailabilityRequest{
		DayOfWeek: 1, StartTime: "09:00", EndTime: "08:00", MaxPatients: 1,
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrValidation))

	wa, err := svc.CreateAvailability(ctx, doctorID, &model.CreateAvailabilityRequest{
		DayOfWeek: 1, StartTime: "08:00", EndTime: "12:00", MaxPatients: 2,
	})
	require.NoError(t, err)
	assert.True(t, wa.IsActive)
}

func TestCreateAvailabilityDuplicateStartConflicts(t *testing.T) {
	svc := NewService(newFakeRepo(), time.UTC)
	ctx := context.Background()
	doctorID := uuid.New()

	_, err := svc.CreateAvailability(ctx, doctorID, &model.CreateAvailabilityRequest{
		DayOfWeek: 2, StartTime: "08:00", EndTime: "12:00", MaxPatients: 2,
	})
	require.NoError(t, err)

	// same doctor, day and start time, regardless of the end time
	_, err = svc.CreateAvailability(ctx, doctorID, &model.CreateAvailabilityRequest{
		DayOfWeek: 2, StartTime: "08:00", EndTime: "10:00", MaxPatients: 1,
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConflict))

	// another day or another doctor is fine
	_, err = svc.CreateAvailability(ctx, doctorID, &model.CreateAvailabilityRequest{
		DayOfWeek: 3, StartTime: "08:00", EndTime: "12:00", MaxPatients: 2,
	})
	require.NoError(t, err)
	_, err = svc.CreateAvailability(ctx, uuid.New(), &model.CreateAvailabilityRequest{
		DayOfWeek: 2, StartTime: "08:00", EndTime: "12:00", MaxPatients: 2,
	})
	require.NoError(t, err)
}

func TestUpdateAvailabilityOwnership(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, time.UTC)
	ctx := context.Background()
	doctorID := uuid.New()

	wa, err := svc.CreateAvailability(ctx, doctorID, &model.CreateAvailabilityRequest{
		DayOfWeek: 2, StartTime: "08:00", EndTime: "12:00", MaxPatients: 1,
	})
	require.NoError(t, err)

	_, err = svc.UpdateAvailability(ctx, uuid.New(), wa.ID, &model.UpdateAvailabilityRequest{})
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))

	newMax := 3
	updated, err := svc.UpdateAvailability(ctx, doctorID, wa.ID, &model.UpdateAvailabilityRequest{
		MaxPatients: &newMax,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.MaxPatients)
}

func TestCreateLeaveValidation(t *testing.T) {
	svc := NewService(newFakeRepo(), time.UTC)
	ctx := context.Background()
	doctorID := uuid.New()
	future := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")

	// past date rejected
	_, err := svc.CreateLeave(ctx, doctorID, &model.CreateLeaveRequest{
		LeaveDate: "2020-01-01", IsFullDay: true,
	})
	assert.True(t, errors.IsCode(err, errors.ErrValidation))

	// partial-day leave needs both times
	_, err = svc.CreateLeave(ctx, doctorID, &model.CreateLeaveRequest{
		LeaveDate: future,
	})
	assert.True(t, errors.IsCode(err, errors.ErrValidation))

	// full-day leave drops any window
	st := "08:00"
	leave, err := svc.CreateLeave(ctx, doctorID, &model.CreateLeaveRequest{
		LeaveDate: future, IsFullDay: true, StartTime: &st,
	})
	require.NoError(t, err)
	assert.Nil(t, leave.StartTime)
	assert.True(t, leave.IsFullDay)
}
