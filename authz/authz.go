// Package authz is the single decision point for who may do what. Every
// handler asks it before touching the store, so the self-service versus
// administrative boundary lives in exactly one switch.
package authz

import (
	"errors"

	"timeclock/models"
)

var (
	ErrUnauthenticated = errors.New("authz: not authenticated")
	ErrForbidden       = errors.New("authz: forbidden")
)

type Action int

const (
	// Self-service actions: allowed on the caller's own records only.
	ActionViewDashboard Action = iota
	ActionClockIn
	ActionClockOut
	ActionViewTimesheet

	// ActionEditTimesheet is allowed for the owner or an admin.
	ActionEditTimesheet

	// Administrative actions: role admin required, any owner.
	ActionViewRoster
	ActionViewAllTimesheets
	ActionCreateUser
	ActionExportTimesheets
)

// Authorize decides whether caller may perform action on records owned
// by ownerID. An ownerID of 0 means the action has no specific target
// (record IDs start at 1). It never mutates anything.
func Authorize(caller *models.User, action Action, ownerID uint) error {
	if caller == nil {
		return ErrUnauthenticated
	}

	switch action {
	case ActionViewDashboard, ActionClockIn, ActionClockOut, ActionViewTimesheet:
		if ownerID == 0 || ownerID == caller.ID {
			return nil
		}
		return ErrForbidden
	case ActionEditTimesheet:
		if caller.IsAdmin() || ownerID == caller.ID {
			return nil
		}
		return ErrForbidden
	case ActionViewRoster, ActionViewAllTimesheets, ActionCreateUser, ActionExportTimesheets:
		if caller.IsAdmin() {
			return nil
		}
		return ErrForbidden
	default:
		return ErrForbidden
	}
}
