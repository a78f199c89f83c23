package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"timeclock/models"
)

var (
	admin = &models.User{ID: 1, Role: models.RoleAdmin}
	alice = &models.User{ID: 2, Role: models.RoleUser}
)

func TestAuthorize_Unauthenticated(t *testing.T) {
	for _, action := range []Action{ActionViewDashboard, ActionClockIn, ActionEditTimesheet, ActionViewRoster} {
		require.ErrorIs(t, Authorize(nil, action, 0), ErrUnauthenticated)
	}
}

func TestAuthorize_SelfService(t *testing.T) {
	for _, action := range []Action{ActionViewDashboard, ActionClockIn, ActionClockOut, ActionViewTimesheet} {
		require.NoError(t, Authorize(alice, action, 0), "untargeted")
		require.NoError(t, Authorize(alice, action, alice.ID), "own record")
		require.ErrorIs(t, Authorize(alice, action, admin.ID), ErrForbidden, "foreign record")
	}
}

func TestAuthorize_Edit(t *testing.T) {
	// Owner may edit their own shift.
	require.NoError(t, Authorize(alice, ActionEditTimesheet, alice.ID))

	// A non-admin editing another user's shift is forbidden; the same
	// request from an admin is allowed.
	require.ErrorIs(t, Authorize(alice, ActionEditTimesheet, 99), ErrForbidden)
	require.NoError(t, Authorize(admin, ActionEditTimesheet, 99))
}

func TestAuthorize_AdminActions(t *testing.T) {
	for _, action := range []Action{ActionViewRoster, ActionViewAllTimesheets, ActionCreateUser, ActionExportTimesheets} {
		require.NoError(t, Authorize(admin, action, 0))
		require.ErrorIs(t, Authorize(alice, action, 0), ErrForbidden)
	}
}

func TestAuthorize_UnknownActionDenied(t *testing.T) {
	require.ErrorIs(t, Authorize(admin, Action(999), 0), ErrForbidden)
}
