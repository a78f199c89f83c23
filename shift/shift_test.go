package shift

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"timeclock/models"
	"timeclock/store"
)

// fakeStore is an in-memory Store for exercising the state machine
// without a database.
type fakeStore struct {
	sheets map[uint]*models.Timesheet
	nextID uint

	createErr  error
	onConflict func(f *fakeStore)
}

func newFakeStore() *fakeStore {
	return &fakeStore{sheets: make(map[uint]*models.Timesheet)}
}

func (f *fakeStore) add(ts models.Timesheet) *models.Timesheet {
	f.nextID++
	ts.ID = f.nextID
	f.sheets[ts.ID] = &ts
	return &ts
}

func (f *fakeStore) CreateUser(context.Context, string, string, string, models.Role) (*models.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeStore) FindUser(context.Context, uint) (*models.User, error) {
	return nil, store.ErrNotFound
}

func (f *fakeStore) FindUserByEmail(context.Context, string) (*models.User, error) {
	return nil, nil
}

func (f *fakeStore) ListUsers(context.Context) ([]models.User, error) {
	return nil, nil
}

func (f *fakeStore) CreateTimesheet(_ context.Context, userID uint, date, clockIn time.Time) (*models.Timesheet, error) {
	if f.createErr != nil {
		if f.onConflict != nil {
			f.onConflict(f)
		}
		return nil, f.createErr
	}
	return f.add(models.Timesheet{UserID: userID, Date: date, ClockIn: &clockIn}), nil
}

func (f *fakeStore) FindTimesheet(_ context.Context, id uint) (*models.Timesheet, error) {
	ts, ok := f.sheets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copy := *ts
	return &copy, nil
}

func (f *fakeStore) FindOpenShift(_ context.Context, userID uint) (*models.Timesheet, error) {
	var open *models.Timesheet
	for _, ts := range f.sheets {
		if ts.UserID == userID && ts.IsOpen() && (open == nil || ts.ID > open.ID) {
			open = ts
		}
	}
	if open == nil {
		return nil, nil
	}
	copy := *open
	return &copy, nil
}

func (f *fakeStore) ListTimesheetsForUser(_ context.Context, userID uint) ([]models.Timesheet, error) {
	var rows []models.Timesheet
	for _, ts := range f.sheets {
		if ts.UserID == userID {
			rows = append(rows, *ts)
		}
	}
	return rows, nil
}

func (f *fakeStore) ListAllTimesheets(context.Context, int) ([]models.Timesheet, error) {
	return nil, nil
}

func (f *fakeStore) ListTimesheetsInRange(context.Context, time.Time, time.Time) ([]models.Timesheet, error) {
	return nil, nil
}

func (f *fakeStore) SaveTimesheet(_ context.Context, ts *models.Timesheet) error {
	copy := *ts
	f.sheets[ts.ID] = &copy
	return nil
}

func newTestService(f *fakeStore, now time.Time) *Service {
	svc := NewService(f)
	svc.now = func() time.Time { return now }
	return svc
}

func clock(value string) time.Time {
	t, err := time.ParseInLocation(models.ClockTimeLayout, value, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func TestClockIn_OpensShift(t *testing.T) {
	f := newFakeStore()
	now := clock("2024-01-01T09:00")
	svc := newTestService(f, now)

	ts, err := svc.ClockIn(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, uint(7), ts.UserID)
	require.True(t, ts.IsOpen())
	require.Equal(t, now, *ts.ClockIn)
	require.Equal(t, clock("2024-01-01T00:00"), ts.Date)
	require.Zero(t, ts.TotalHours)
	require.Zero(t, ts.PTOEarned)
}

func TestClockIn_Idempotent(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f, clock("2024-01-01T09:00"))

	first, err := svc.ClockIn(context.Background(), 7)
	require.NoError(t, err)

	second, err := svc.ClockIn(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, f.sheets, 1)
}

func TestClockIn_ConflictReturnsExistingShift(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f, clock("2024-01-01T09:00"))

	// Simulate a concurrent clock-in landing between the open-shift
	// check and the create.
	f.createErr = errors.New("duplicate key value violates unique constraint")
	f.onConflict = func(f *fakeStore) {
		in := clock("2024-01-01T08:59")
		f.add(models.Timesheet{UserID: 7, ClockIn: &in})
	}

	ts, err := svc.ClockIn(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, ts)
	require.True(t, ts.IsOpen())
	require.Len(t, f.sheets, 1)
}

func TestClockOut_ClosesAndRecomputes(t *testing.T) {
	f := newFakeStore()
	in := clock("2024-01-01T09:00")
	open := f.add(models.Timesheet{UserID: 7, Date: in, ClockIn: &in})

	svc := newTestService(f, clock("2024-01-01T17:00"))
	ts, err := svc.ClockOut(context.Background(), 7, open.ID)
	require.NoError(t, err)
	require.NotNil(t, ts)
	require.False(t, ts.IsOpen())
	require.Equal(t, 8.0, ts.TotalHours)
	require.Equal(t, 0.4, ts.PTOEarned)
	require.Equal(t, 8.0, f.sheets[open.ID].TotalHours)
}

func TestClockOut_NoOps(t *testing.T) {
	in := clock("2024-01-01T09:00")
	out := clock("2024-01-01T17:00")

	cases := []struct {
		name  string
		sheet *models.Timesheet
		user  uint
	}{
		{"missing shift", nil, 7},
		{"foreign shift", &models.Timesheet{UserID: 8, ClockIn: &in}, 7},
		{"never opened", &models.Timesheet{UserID: 7}, 7},
		{"already closed", &models.Timesheet{UserID: 7, ClockIn: &in, ClockOut: &out, TotalHours: 8, PTOEarned: 0.4}, 7},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFakeStore()
			var id uint = 42
			if tc.sheet != nil {
				id = f.add(*tc.sheet).ID
			}
			before, _ := f.FindTimesheet(context.Background(), id)

			svc := newTestService(f, clock("2024-01-01T18:00"))
			ts, err := svc.ClockOut(context.Background(), tc.user, id)
			require.NoError(t, err)
			require.Nil(t, ts)

			after, _ := f.FindTimesheet(context.Background(), id)
			require.Equal(t, before, after)
		})
	}
}

func TestEdit_MissingShift(t *testing.T) {
	svc := newTestService(newFakeStore(), clock("2024-01-01T09:00"))
	_, err := svc.Edit(context.Background(), 42, "2024-01-01T09:00", "")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEdit_MalformedFieldNamesIt(t *testing.T) {
	f := newFakeStore()
	sheet := f.add(models.Timesheet{UserID: 7})
	svc := newTestService(f, clock("2024-01-01T09:00"))

	_, err := svc.Edit(context.Background(), sheet.ID, "bogus", "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "clock_in", verr.Field)

	_, err = svc.Edit(context.Background(), sheet.ID, "2024-01-01T09:00", "bogus")
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "clock_out", verr.Field)
}

func TestEdit_SetsTimestampsAndRecomputes(t *testing.T) {
	f := newFakeStore()
	sheet := f.add(models.Timesheet{UserID: 7})
	svc := newTestService(f, clock("2024-01-01T09:00"))

	ts, err := svc.Edit(context.Background(), sheet.ID, "2024-01-01T09:00", "2024-01-01T17:30")
	require.NoError(t, err)
	require.Equal(t, 8.5, ts.TotalHours)
	require.Equal(t, 0.43, ts.PTOEarned)
}

func TestEdit_EqualTimestampsYieldZero(t *testing.T) {
	f := newFakeStore()
	sheet := f.add(models.Timesheet{UserID: 7})
	svc := newTestService(f, clock("2024-02-01T09:00"))

	ts, err := svc.Edit(context.Background(), sheet.ID, "2024-02-01T08:00", "2024-02-01T08:00")
	require.NoError(t, err)
	require.Zero(t, ts.TotalHours)
	require.Zero(t, ts.PTOEarned)
}

func TestEdit_EmptyFieldClearsTimestamp(t *testing.T) {
	f := newFakeStore()
	in := clock("2024-01-01T09:00")
	out := clock("2024-01-01T17:00")
	sheet := f.add(models.Timesheet{UserID: 7, ClockIn: &in, ClockOut: &out, TotalHours: 8, PTOEarned: 0.4})
	svc := newTestService(f, out)

	// Clearing clock_out reopens the shift and zeroes the derived
	// fields.
	ts, err := svc.Edit(context.Background(), sheet.ID, "2024-01-01T09:00", "")
	require.NoError(t, err)
	require.True(t, ts.IsOpen())
	require.Zero(t, ts.TotalHours)
	require.Zero(t, ts.PTOEarned)

	ts, err = svc.Edit(context.Background(), sheet.ID, "", "")
	require.NoError(t, err)
	require.Nil(t, ts.ClockIn)
	require.Nil(t, ts.ClockOut)
}
