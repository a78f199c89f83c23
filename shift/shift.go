// Package shift drives the clock-in/clock-out/edit transitions for a
// user's timesheets and keeps the derived hour and PTO fields fresh.
package shift

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timeclock/models"
	"timeclock/store"
)

// ValidationError reports a manual edit field that could not be parsed.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s value %q, expected %s", e.Field, e.Value, models.ClockTimeLayout)
}

type Service struct {
	store store.Store
	now   func() time.Time
}

func NewService(s store.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// ClockIn opens a shift for the user dated today. If the user already
// has an open shift it is returned unchanged; a repeated clock-in is
// not an error.
func (s *Service) ClockIn(ctx context.Context, userID uint) (*models.Timesheet, error) {
	open, err := s.store.FindOpenShift(ctx, userID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return open, nil
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	ts, err := s.store.CreateTimesheet(ctx, userID, today, now)
	if err != nil {
		// A concurrent clock-in may have hit the one-open-shift
		// unique index first; if so that shift is the answer.
		if open, ferr := s.store.FindOpenShift(ctx, userID); ferr == nil && open != nil {
			return open, nil
		}
		return nil, err
	}
	return ts, nil
}

// ClockOut closes the user's shift and recomputes its derived fields.
// A shift that is missing, owned by someone else, never opened, or
// already closed is left untouched and reported as (nil, nil).
func (s *Service) ClockOut(ctx context.Context, userID, shiftID uint) (*models.Timesheet, error) {
	ts, err := s.store.FindTimesheet(ctx, shiftID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if ts.UserID != userID || !ts.IsOpen() {
		return nil, nil
	}

	now := s.now()
	ts.ClockOut = &now
	ts.Recompute()
	if err := s.store.SaveTimesheet(ctx, ts); err != nil {
		return nil, err
	}
	return ts, nil
}

// Edit replaces a shift's timestamps from form input. An empty field
// clears the timestamp; a malformed one fails with a ValidationError
// naming the field. Edits apply regardless of the shift's current state,
// so an administrator can reopen a closed shift or close a stuck one.
func (s *Service) Edit(ctx context.Context, shiftID uint, clockIn, clockOut string) (*models.Timesheet, error) {
	ts, err := s.store.FindTimesheet(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	in, err := models.ParseClockTime(clockIn)
	if err != nil {
		return nil, &ValidationError{Field: "clock_in", Value: clockIn}
	}
	out, err := models.ParseClockTime(clockOut)
	if err != nil {
		return nil, &ValidationError{Field: "clock_out", Value: clockOut}
	}

	ts.ClockIn = in
	ts.ClockOut = out
	ts.Recompute()
	if err := s.store.SaveTimesheet(ctx, ts); err != nil {
		return nil, err
	}
	return ts, nil
}
