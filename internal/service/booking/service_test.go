package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
	"github.com/dangkhoa18052004/hospital-api/internal/repository"
	"github.com/dangkhoa18052004/hospital-api/internal/service/setting"
	"github.com/dangkhoa18052004/hospital-api/pkg/errors"
	"github.com/dangkhoa18052004/hospital-api/pkg/logger"
	"github.com/dangkhoa18052004/hospital-api/pkg/metrics"
)

// fakeLedger is an in-memory booking ledger. WithSlotLock serializes
// callers with one mutex, mirroring the per-key advisory lock.
type fakeLedger struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*model.Appointment
	history      []*model.AppointmentHistory
	payments     []*model.Payment
	events       []*model.OutboxEvent

	windows map[int][]*model.WeeklyAvailability
	leaves  map[string]*model.DoctorLeave
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		appointments: make(map[uuid.UUID]*model.Appointment),
		windows:      make(map[int][]*model.WeeklyAvailability),
		leaves:       make(map[string]*model.DoctorLeave),
	}
}

func (f *fakeLedger) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.appointments[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeLedger) GetByCode(_ context.Context, code string) (*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appointments {
		if a.AppointmentCode == code {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeLedger) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}

func (f *fakeLedger) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Appointment
	for _, a := range f.appointments {
		if a.PatientID == patientID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeLedger) ActiveCountsByTime(_ context.Context, doctorID uuid.UUID, date time.Time) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countsLocked(doctorID, date), nil
}

func (f *fakeLedger) countsLocked(doctorID uuid.UUID, date time.Time) map[string]int {
	counts := make(map[string]int)
	for _, a := range f.appointments {
		if a.DoctorID == doctorID && a.AppointmentDate.Equal(date) &&
			(a.Status == model.AppointmentStatusPending || a.Status == model.AppointmentStatusConfirmed) {
			counts[a.AppointmentTime]++
		}
	}
	return counts
}

func (f *fakeLedger) WithSlotLock(_ context.Context, _ uuid.UUID, _ time.Time, _ string, fn func(tx repository.BookingTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(&fakeTx{ledger: f})
}

func (f *fakeLedger) UpdateStatus(_ context.Context, appt *model.Appointment, hist *model.AppointmentHistory, evt *model.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *appt
	f.appointments[appt.ID] = &cp
	if hist != nil {
		f.history = append(f.history, hist)
	}
	if evt != nil {
		f.events = append(f.events, evt)
	}
	return nil
}

func (f *fakeLedger) Complete(_ context.Context, appt *model.Appointment, hist *model.AppointmentHistory, _ *model.MedicalRecord, _ []*model.Prescription) error {
	return f.UpdateStatus(context.Background(), appt, hist, nil)
}

func (f *fakeLedger) ListHistory(_ context.Context, appointmentID uuid.UUID) ([]*model.AppointmentHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.AppointmentHistory
	for _, h := range f.history {
		if h.AppointmentID == appointmentID {
			out = append(out, h)
		}
	}
	return out, nil
}

type fakeTx struct {
	ledger *fakeLedger
}

func (t *fakeTx) ListActiveWindows(_ uuid.UUID, dayOfWeek int) ([]*model.WeeklyAvailability, error) {
	return t.ledger.windows[dayOfWeek], nil
}

func (t *fakeTx) GetLeave(_ uuid.UUID, date time.Time) (*model.DoctorLeave, error) {
	return t.ledger.leaves[date.Format("2006-01-02")], nil
}

func (t *fakeTx) CountActive(doctorID uuid.UUID, date time.Time, timeKey string, excludeID *uuid.UUID) (int, error) {
	count := 0
	for _, a := range t.ledger.appointments {
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if a.DoctorID == doctorID && a.AppointmentDate.Equal(date) && a.AppointmentTime == timeKey &&
			(a.Status == model.AppointmentStatusPending || a.Status == model.AppointmentStatusConfirmed) {
			count++
		}
	}
	return count, nil
}

func (t *fakeTx) InsertAppointment(appt *model.Appointment) error {
	cp := *appt
	t.ledger.appointments[appt.ID] = &cp
	return nil
}

func (t *fakeTx) UpdateSchedule(appointmentID uuid.UUID, newDate time.Time, newTime string) error {
	a := t.ledger.appointments[appointmentID]
	a.AppointmentDate = newDate
	a.AppointmentTime = newTime
	return nil
}

func (t *fakeTx) InsertHistory(hist *model.AppointmentHistory) error {
	t.ledger.history = append(t.ledger.history, hist)
	return nil
}

func (t *fakeTx) InsertPayment(p *model.Payment) error {
	t.ledger.payments = append(t.ledger.payments, p)
	return nil
}

func (t *fakeTx) InsertOutboxEvent(evt *model.OutboxEvent) error {
	t.ledger.events = append(t.ledger.events, evt)
	return nil
}

type fakeDoctors struct {
	doctor  *model.Doctor
	service *model.Service
}

func (f *fakeDoctors) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	if f.doctor != nil && f.doctor.ID == id {
		return f.doctor, nil
	}
	return nil, nil
}

func (f *fakeDoctors) GetByUserID(_ context.Context, _ uuid.UUID) (*model.Doctor, error) {
	return f.doctor, nil
}

func (f *fakeDoctors) GetService(_ context.Context, id uuid.UUID) (*model.Service, error) {
	if f.service != nil && f.service.ID == id {
		return f.service, nil
	}
	return nil, nil
}

func (f *fakeDoctors) UpdateRating(_ context.Context, _ uuid.UUID, _ float64, _ int) error {
	return nil
}

type fakeSchedules struct {
	ledger *fakeLedger
}

func (f *fakeSchedules) ListWeeklyAvailability(_ context.Context, _ uuid.UUID, dayOfWeek int) ([]*model.WeeklyAvailability, error) {
	return f.ledger.windows[dayOfWeek], nil
}

func (f *fakeSchedules) ListAllAvailability(_ context.Context, _ uuid.UUID) ([]*model.WeeklyAvailability, error) {
	return nil, nil
}

func (f *fakeSchedules) GetAvailability(_ context.Context, _ uuid.UUID) (*model.WeeklyAvailability, error) {
	return nil, nil
}

func (f *fakeSchedules) CreateAvailability(_ context.Context, _ *model.WeeklyAvailability) error {
	return nil
}

func (f *fakeSchedules) UpdateAvailability(_ context.Context, _ *model.WeeklyAvailability) error {
	return nil
}

func (f *fakeSchedules) GetLeave(_ context.Context, _ uuid.UUID, date time.Time) (*model.DoctorLeave, error) {
	return f.ledger.leaves[date.Format("2006-01-02")], nil
}

func (f *fakeSchedules) CreateLeave(_ context.Context, _ *model.DoctorLeave) error {
	return nil
}

type fakeSettings struct{}

func (fakeSettings) Get(_ context.Context, _ string) (*model.SystemSetting, error) {
	return nil, nil
}
func (fakeSettings) Upsert(_ context.Context, _ *model.SystemSetting) error { return nil }
func (fakeSettings) List(_ context.Context) ([]*model.SystemSetting, error) {
	return nil, nil
}

type fakePayments struct {
	ledger *fakeLedger
}

func (f *fakePayments) GetByAppointment(_ context.Context, appointmentID uuid.UUID) (*model.Payment, error) {
	f.ledger.mu.Lock()
	defer f.ledger.mu.Unlock()
	for _, p := range f.ledger.payments {
		if p.AppointmentID == appointmentID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePayments) MarkCompleted(_ context.Context, id uuid.UUID, transactionID string) error {
	f.ledger.mu.Lock()
	defer f.ledger.mu.Unlock()
	for _, p := range f.ledger.payments {
		if p.ID == id && p.Status == model.PaymentStatusPending {
			now := time.Now()
			p.Status = model.PaymentStatusCompleted
			p.TransactionID = &transactionID
			p.PaidAt = &now
			return nil
		}
	}
	return nil
}

type fixture struct {
	svc       *Service
	ledger    *fakeLedger
	doctorID  uuid.UUID
	serviceID uuid.UUID
	patientID uuid.UUID
	date      string
}

// newFixture schedules the doctor for every weekday 08:00-09:00 with the
// given capacity and returns a bookable date far enough in the future.
func newFixture(t *testing.T, maxPatients int) *fixture {
	t.Helper()

	ledger := newFakeLedger()
	doctorID := uuid.New()
	serviceID := uuid.New()

	for day := 0; day < 7; day++ {
		ledger.windows[day] = []*model.WeeklyAvailability{{
			DoctorID:    doctorID,
			DayOfWeek:   day,
			StartTime:   "08:00",
			EndTime:     "09:00",
			MaxPatients: maxPatients,
			IsActive:    true,
		}}
	}

	doctors := &fakeDoctors{
		doctor:  &model.Doctor{Base: model.Base{ID: doctorID}, IsAvailable: true},
		service: &model.Service{Base: model.Base{ID: serviceID}, Price: 100, IsActive: true},
	}

	svc := NewService(
		ledger,
		&fakeSchedules{ledger: ledger},
		doctors,
		&fakePayments{ledger: ledger},
		setting.NewService(fakeSettings{}),
		metrics.NewMetrics("test_"+uuid.NewString()[:8]),
		logger.NewLogger(nil),
		time.UTC,
	)

	return &fixture{
		svc:       svc,
		ledger:    ledger,
		doctorID:  doctorID,
		serviceID: serviceID,
		patientID: uuid.New(),
		date:      time.Now().UTC().AddDate(0, 0, 14).Format("2006-01-02"),
	}
}

func (f *fixture) bookReq(timeKey string) *model.BookAppointmentRequest {
	return &model.BookAppointmentRequest{
		DoctorID:        f.doctorID,
		ServiceID:       f.serviceID,
		AppointmentDate: f.date,
		AppointmentTime: timeKey,
	}
}

func TestBookSuccess(t *testing.T) {
	f := newFixture(t, 1)

	appt, err := f.svc.Book(context.Background(), f.patientID, f.bookReq("08:15"))
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, appt.Status)
	assert.Regexp(t, `^AP[A-Z0-9]{10}$`, appt.AppointmentCode)

	// payment row and booked event committed with the appointment
	require.Len(t, f.ledger.payments, 1)
	require.Len(t, f.ledger.events, 1)
	assert.Equal(t, model.EventAppointmentBooked, f.ledger.events[0].EventType)
}

func TestBookReducesSlotCapacity(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	before, err := f.svc.GetAvailableSlots(ctx, f.doctorID, f.date)
	require.NoError(t, err)
	require.Len(t, before, 4)

	_, err = f.svc.Book(ctx, f.patientID, f.bookReq("08:15"))
	require.NoError(t, err)

	after, err := f.svc.GetAvailableSlots(ctx, f.doctorID, f.date)
	require.NoError(t, err)
	require.Len(t, after, 3)
	for _, s := range after {
		assert.NotEqual(t, "08:15", s.StartTime)
	}
}

func TestBookConflictOnFullSlot(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	_, err := f.svc.Book(ctx, f.patientID, f.bookReq("08:15"))
	require.NoError(t, err)

	_, err = f.svc.Book(ctx, uuid.New(), f.bookReq("08:15"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConflict))

	// a different slot still books fine
	_, err = f.svc.Book(ctx, uuid.New(), f.bookReq("08:00"))
	assert.NoError(t, err)
}

func TestBookCapacityTwoAdmitsTwoThenConflicts(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	_, err := f.svc.Book(ctx, uuid.New(), f.bookReq("08:00"))
	require.NoError(t, err)
	_, err = f.svc.Book(ctx, uuid.New(), f.bookReq("08:00"))
	require.NoError(t, err)

	_, err = f.svc.Book(ctx, uuid.New(), f.bookReq("08:00"))
	assert.True(t, errors.IsCode(err, errors.ErrConflict))
}

func TestBookPastDate(t *testing.T) {
	f := newFixture(t, 1)
	f.date = time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")

	_, err := f.svc.Book(context.Background(), f.patientID, f.bookReq("08:00"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrValidation))
}

func TestBookUnknownDoctor(t *testing.T) {
	f := newFixture(t, 1)
	req := f.bookReq("08:00")
	req.DoctorID = uuid.New()

	_, err := f.svc.Book(context.Background(), f.patientID, req)
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}

func TestBookOutsideSchedule(t *testing.T) {
	f := newFixture(t, 1)

	_, err := f.svc.Book(context.Background(), f.patientID, f.bookReq("14:00"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrValidation))
}

func TestDeactivatedWindowNotOfferedOrBookable(t *testing.T) {
	f := newFixture(t, 1)
	for day := 0; day < 7; day++ {
		for _, w := range f.ledger.windows[day] {
			w.IsActive = false
		}
	}

	slots, err := f.svc.GetAvailableSlots(context.Background(), f.doctorID, f.date)
	require.NoError(t, err)
	assert.Empty(t, slots)

	_, err = f.svc.Book(context.Background(), f.patientID, f.bookReq("08:00"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrValidation))
}

func TestBookFullDayLeave(t *testing.T) {
	f := newFixture(t, 1)
	f.ledger.leaves[f.date] = &model.DoctorLeave{IsFullDay: true}

	slots, err := f.svc.GetAvailableSlots(context.Background(), f.doctorID, f.date)
	require.NoError(t, err)
	assert.Empty(t, slots)

	_, err = f.svc.Book(context.Background(), f.patientID, f.bookReq("08:00"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrValidation))
}

func TestRescheduleSuccessWritesHistory(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	appt, err := f.svc.Book(ctx, f.patientID, f.bookReq("08:15"))
	require.NoError(t, err)

	moved, err := f.svc.Reschedule(ctx, appt.ID, f.patientID, &model.RescheduleAppointmentRequest{
		NewDate: f.date,
		NewTime: "08:30",
	})
	require.NoError(t, err)
	assert.Equal(t, "08:30", moved.AppointmentTime)

	hist, err := f.svc.History(ctx, appt.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "08:15", *hist[0].OldTime)
	assert.Equal(t, "08:30", *hist[0].NewTime)
	require.NotNil(t, hist[0].OldStatus)
	require.NotNil(t, hist[0].NewStatus)
	assert.Equal(t, string(model.AppointmentStatusPending), *hist[0].OldStatus)
	assert.Equal(t, string(model.AppointmentStatusPending), *hist[0].NewStatus)
}

func TestRescheduleConflictLeavesOriginalUnchanged(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	_, err := f.svc.Book(ctx, uuid.New(), f.bookReq("08:30"))
	require.NoError(t, err)

	appt, err := f.svc.Book(ctx, f.patientID, f.bookReq("08:15"))
	require.NoError(t, err)

	_, err = f.svc.Reschedule(ctx, appt.ID, f.patientID, &model.RescheduleAppointmentRequest{
		NewDate: f.date,
		NewTime: "08:30",
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConflict))

	unchanged, err := f.svc.Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, "08:15", unchanged.AppointmentTime)
}

func TestRescheduleToOwnSlotAllowed(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	appt, err := f.svc.Book(ctx, f.patientID, f.bookReq("08:15"))
	require.NoError(t, err)

	// the moved appointment is excluded from its own conflict set
	_, err = f.svc.Reschedule(ctx, appt.ID, f.patientID, &model.RescheduleAppointmentRequest{
		NewDate: f.date,
		NewTime: "08:15",
	})
	assert.NoError(t, err)
}

func TestRescheduleWrongPatient(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	appt, err := f.svc.Book(ctx, f.patientID, f.bookReq("08:15"))
	require.NoError(t, err)

	_, err = f.svc.Reschedule(ctx, appt.ID, uuid.New(), &model.RescheduleAppointmentRequest{
		NewDate: f.date,
		NewTime: "08:30",
	})
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}

func TestCancelWithEnoughLeadTime(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	appt, err := f.svc.Book(ctx, f.patientID, f.bookReq("08:15"))
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, appt.ID, f.patientID, "schedule change")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	require.NotNil(t, cancelled.CancellationReason)

	// cancellation frees the slot
	slots, err := f.svc.GetAvailableSlots(ctx, f.doctorID, f.date)
	require.NoError(t, err)
	assert.Len(t, slots, 4)

	// and emits the cancelled event
	last := f.ledger.events[len(f.ledger.events)-1]
	assert.Equal(t, model.EventAppointmentCancelled, last.EventType)
}

func TestCancelTooLate(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.date = time.Now().UTC().AddDate(0, 0, 14).Format("2006-01-02")

	appt, err := f.svc.Book(ctx, f.patientID, f.bookReq("08:15"))
	require.NoError(t, err)

	// move the stored appointment to a few hours from now, inside the
	// default 24 hour window
	soon := time.Now().UTC().Add(3 * time.Hour)
	stored := f.ledger.appointments[appt.ID]
	stored.AppointmentDate = time.Date(soon.Year(), soon.Month(), soon.Day(), 0, 0, 0, 0, time.UTC)
	stored.AppointmentTime = soon.Format("15:04")

	_, err = f.svc.Cancel(ctx, appt.ID, f.patientID, "")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrPolicyViolation))
}

func TestCancelCompletedAppointmentRejected(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	appt, err := f.svc.Book(ctx, f.patientID, f.bookReq("08:15"))
	require.NoError(t, err)

	f.ledger.appointments[appt.ID].Status = model.AppointmentStatusCompleted

	_, err = f.svc.Cancel(ctx, appt.ID, f.patientID, "")
	assert.True(t, errors.IsCode(err, errors.ErrInvalidState))
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	staffID := uuid.New()

	appt, err := f.svc.Book(ctx, f.patientID, f.bookReq("08:15"))
	require.NoError(t, err)

	confirmed, err := f.svc.Confirm(ctx, appt.ID, staffID, "")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, confirmed.Status)

	checkedIn, err := f.svc.CheckIn(ctx, appt.ID, staffID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCheckedIn, checkedIn.Status)
	assert.NotNil(t, checkedIn.CheckedInAt)

	// checked_in cannot be confirmed or marked no-show
	_, err = f.svc.Confirm(ctx, appt.ID, staffID, "")
	assert.True(t, errors.IsCode(err, errors.ErrInvalidState))
	_, err = f.svc.MarkNoShow(ctx, appt.ID, staffID)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidState))
}

func TestConfirmSettlesPendingPayment(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	appt, err := f.svc.Book(ctx, f.patientID, f.bookReq("08:00"))
	require.NoError(t, err)
	require.Len(t, f.ledger.payments, 1)
	require.Equal(t, model.PaymentStatusPending, f.ledger.payments[0].Status)

	_, err = f.svc.Confirm(ctx, appt.ID, uuid.New(), "txn-123")
	require.NoError(t, err)

	paid := f.ledger.payments[0]
	assert.Equal(t, model.PaymentStatusCompleted, paid.Status)
	require.NotNil(t, paid.TransactionID)
	assert.Equal(t, "txn-123", *paid.TransactionID)
	assert.NotNil(t, paid.PaidAt)
}

func TestMarkNoShowFromConfirmed(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	staffID := uuid.New()

	appt, err := f.svc.Book(ctx, f.patientID, f.bookReq("08:15"))
	require.NoError(t, err)

	// pending cannot go straight to no_show
	_, err = f.svc.MarkNoShow(ctx, appt.ID, staffID)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidState))

	_, err = f.svc.Confirm(ctx, appt.ID, staffID, "")
	require.NoError(t, err)

	noShow, err := f.svc.MarkNoShow(ctx, appt.ID, staffID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusNoShow, noShow.Status)
}

func TestConcurrentBookingSingleWinner(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Book(ctx, uuid.New(), f.bookReq("08:45"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes, conflicts := 0, 0
	for err := range errs {
		if err == nil {
			successes++
		} else if errors.IsCode(err, errors.ErrConflict) {
			conflicts++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
}
