// Package store defines the persistence boundary for users and
// timesheets. The rest of the application only sees this interface; the
// GORM implementation lives alongside it.
package store

import (
	"context"
	"errors"
	"time"

	"timeclock/models"
)

var (
	// ErrNotFound is returned when a referenced user or timesheet
	// does not exist.
	ErrNotFound = errors.New("store: record not found")

	// ErrEmailTaken is returned by CreateUser when the normalized
	// email already belongs to another user.
	ErrEmailTaken = errors.New("store: email already registered")
)

type Store interface {
	// CreateUser persists a new user. The email is normalized before
	// the uniqueness check.
	CreateUser(ctx context.Context, name, email, passwordHash string, role models.Role) (*models.User, error)
	FindUser(ctx context.Context, id uint) (*models.User, error)
	// FindUserByEmail returns (nil, nil) when no user has the address.
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	// ListUsers returns the full roster ordered by name ascending.
	ListUsers(ctx context.Context) ([]models.User, error)

	CreateTimesheet(ctx context.Context, userID uint, date time.Time, clockIn time.Time) (*models.Timesheet, error)
	FindTimesheet(ctx context.Context, id uint) (*models.Timesheet, error)
	// FindOpenShift returns the user's shift with clock_in set and
	// clock_out unset, or (nil, nil) when there is none.
	FindOpenShift(ctx context.Context, userID uint) (*models.Timesheet, error)
	// ListTimesheetsForUser orders by clock_in desc with nulls last,
	// then id desc, so the newest activity renders first.
	ListTimesheetsForUser(ctx context.Context, userID uint) ([]models.Timesheet, error)
	// ListAllTimesheets returns up to limit shifts across all users,
	// same ordering as ListTimesheetsForUser, with User preloaded.
	ListAllTimesheets(ctx context.Context, limit int) ([]models.Timesheet, error)
	// ListTimesheetsInRange returns shifts with start <= clock_in < end
	// across all users, ordered for export (clock_in asc, user id asc),
	// with User preloaded.
	ListTimesheetsInRange(ctx context.Context, start, end time.Time) ([]models.Timesheet, error)
	SaveTimesheet(ctx context.Context, ts *models.Timesheet) error
}
