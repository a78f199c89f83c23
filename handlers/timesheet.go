package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"timeclock/authz"
	"timeclock/cache"
	"timeclock/config"
	"timeclock/middleware"
	"timeclock/models"
	"timeclock/shift"
	"timeclock/store"
)

type TimesheetHandler struct {
	config    *config.Config
	templates map[string]*template.Template
	store     store.Store
	shifts    *shift.Service
	rdb       *redis.Client
}

func NewTimesheetHandler(cfg *config.Config, templates map[string]*template.Template, st store.Store, shifts *shift.Service, rdb *redis.Client) *TimesheetHandler {
	return &TimesheetHandler{
		config:    cfg,
		templates: templates,
		store:     st,
		shifts:    shifts,
		rdb:       rdb,
	}
}

// Home routes an authenticated user to the dashboard matching their role.
func (h *TimesheetHandler) Home(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if user.IsAdmin() {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/me", http.StatusSeeOther)
}

func (h *TimesheetHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if err := authz.Authorize(user, authz.ActionViewDashboard, 0); err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	rows, err := h.store.ListTimesheetsForUser(r.Context(), user.ID)
	if err != nil {
		http.Error(w, "Failed to load timesheets", http.StatusInternalServerError)
		return
	}

	totalHours, ptoBalance := models.Aggregate(rows)
	openShift := models.FindOpenShift(rows)

	data := map[string]interface{}{
		"User":       user,
		"Rows":       rows,
		"TotalHours": totalHours,
		"PTOBalance": ptoBalance,
		"OpenShift":  openShift,
		"Error":      r.URL.Query().Get("error"),
		"Success":    r.URL.Query().Get("success"),
	}
	h.templates["dashboard"].ExecuteTemplate(w, "base", data)
}

func (h *TimesheetHandler) ClockIn(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if err := authz.Authorize(user, authz.ActionClockIn, 0); err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if _, err := h.shifts.ClockIn(r.Context(), user.ID); err != nil {
		http.Redirect(w, r, "/me?error=Failed+to+clock+in", http.StatusSeeOther)
		return
	}

	h.invalidateBalances(r)
	http.Redirect(w, r, "/me", http.StatusSeeOther)
}

func (h *TimesheetHandler) ClockOut(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if err := authz.Authorize(user, authz.ActionClockOut, 0); err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Redirect(w, r, "/me", http.StatusSeeOther)
		return
	}

	// A stale or foreign id is silently ignored by the shift service.
	if _, err := h.shifts.ClockOut(r.Context(), user.ID, uint(id)); err != nil {
		http.Redirect(w, r, "/me?error=Failed+to+clock+out", http.StatusSeeOther)
		return
	}

	h.invalidateBalances(r)
	http.Redirect(w, r, "/me", http.StatusSeeOther)
}

func (h *TimesheetHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	ts, ok := h.loadForEdit(w, r, user)
	if !ok {
		return
	}

	data := map[string]interface{}{
		"User":     user,
		"Ts":       ts,
		"ClockIn":  formatClock(ts.ClockIn),
		"ClockOut": formatClock(ts.ClockOut),
		"Error":    r.URL.Query().Get("error"),
	}
	h.templates["edit-timesheet"].ExecuteTemplate(w, "base", data)
}

func (h *TimesheetHandler) EditSubmit(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	ts, ok := h.loadForEdit(w, r, user)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, fmt.Sprintf("/timesheet/%d/edit?error=Invalid+form+data", ts.ID), http.StatusSeeOther)
		return
	}

	_, err := h.shifts.Edit(r.Context(), ts.ID, r.FormValue("clock_in"), r.FormValue("clock_out"))
	var verr *shift.ValidationError
	switch {
	case errors.As(err, &verr):
		msg := url.QueryEscape(verr.Error())
		http.Redirect(w, r, fmt.Sprintf("/timesheet/%d/edit?error=%s", ts.ID, msg), http.StatusSeeOther)
		return
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
		return
	case err != nil:
		http.Redirect(w, r, fmt.Sprintf("/timesheet/%d/edit?error=Failed+to+update+timesheet", ts.ID), http.StatusSeeOther)
		return
	}

	h.invalidateBalances(r)
	if user.IsAdmin() {
		http.Redirect(w, r, "/admin?success=Timesheet+updated", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/me?success=Timesheet+updated", http.StatusSeeOther)
}

// loadForEdit resolves the {id} route param and checks the caller may
// edit that shift. It writes the error response itself when not.
func (h *TimesheetHandler) loadForEdit(w http.ResponseWriter, r *http.Request, user *models.User) (*models.Timesheet, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return nil, false
	}

	ts, err := h.store.FindTimesheet(r.Context(), uint(id))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		http.Error(w, "Failed to load timesheet", http.StatusInternalServerError)
		return nil, false
	}

	if err := authz.Authorize(user, authz.ActionEditTimesheet, ts.UserID); err != nil {
		if errors.Is(err, authz.ErrUnauthenticated) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return nil, false
		}
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}

	return ts, true
}

func (h *TimesheetHandler) invalidateBalances(r *http.Request) {
	cache.Delete(r.Context(), h.rdb, balancesCacheKey)
}

// formatClock renders an optional timestamp back into the edit-form
// field format.
func formatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(models.ClockTimeLayout)
}
