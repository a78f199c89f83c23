package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"timeclock/authz"
	"timeclock/cache"
	"timeclock/config"
	"timeclock/middleware"
	"timeclock/models"
	"timeclock/store"
)

const (
	balancesCacheKey = "admin:balances"
	balancesCacheTTL = time.Minute

	// adminTimesheetLimit caps the recent-activity table on the admin
	// dashboard.
	adminTimesheetLimit = 300
)

// Balance is a user's aggregated position across all their shifts.
type Balance struct {
	Hours float64 `json:"hours"`
	PTO   float64 `json:"pto"`
}

type AdminHandler struct {
	config    *config.Config
	templates map[string]*template.Template
	store     store.Store
	rdb       *redis.Client
}

func NewAdminHandler(cfg *config.Config, templates map[string]*template.Template, st store.Store, rdb *redis.Client) *AdminHandler {
	return &AdminHandler{
		config:    cfg,
		templates: templates,
		store:     st,
		rdb:       rdb,
	}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !h.requireAdmin(w, r, user, authz.ActionViewRoster) {
		return
	}

	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		http.Error(w, "Failed to load users", http.StatusInternalServerError)
		return
	}

	timesheets, err := h.store.ListAllTimesheets(r.Context(), adminTimesheetLimit)
	if err != nil {
		http.Error(w, "Failed to load timesheets", http.StatusInternalServerError)
		return
	}

	balances, err := h.userBalances(r, users)
	if err != nil {
		http.Error(w, "Failed to compute balances", http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"User":       user,
		"Users":      users,
		"Timesheets": timesheets,
		"Balances":   balances,
		"Error":      r.URL.Query().Get("error"),
		"Success":    r.URL.Query().Get("success"),
	}
	h.templates["admin"].ExecuteTemplate(w, "base", data)
}

// userBalances aggregates every user's shifts independently. The result
// is cached briefly in Redis; each timesheet mutation drops the key.
func (h *AdminHandler) userBalances(r *http.Request, users []models.User) (map[uint]Balance, error) {
	ctx := r.Context()

	balances := make(map[uint]Balance)
	if found, err := cache.Get(ctx, h.rdb, balancesCacheKey, &balances); err != nil {
		logrus.WithError(err).Warn("balance cache read failed")
	} else if found {
		return balances, nil
	}

	for _, u := range users {
		rows, err := h.store.ListTimesheetsForUser(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		hours, pto := models.Aggregate(rows)
		balances[u.ID] = Balance{Hours: hours, PTO: pto}
	}

	if err := cache.Set(ctx, h.rdb, balancesCacheKey, balances, balancesCacheTTL); err != nil {
		logrus.WithError(err).Warn("balance cache write failed")
	}
	return balances, nil
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetUserFromContext(r.Context())
	if !h.requireAdmin(w, r, admin, authz.ActionCreateUser) {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/admin?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	name := r.FormValue("name")
	email := models.NormalizeEmail(r.FormValue("email"))
	password := r.FormValue("password")

	if name == "" || email == "" || password == "" {
		http.Redirect(w, r, "/admin?error=Name,+email+and+password+are+required", http.StatusSeeOther)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		http.Redirect(w, r, "/admin?error=Failed+to+create+user", http.StatusSeeOther)
		return
	}

	_, err = h.store.CreateUser(r.Context(), name, email, string(hashedPassword), models.RoleUser)
	if errors.Is(err, store.ErrEmailTaken) {
		http.Redirect(w, r, "/admin?error=Email+already+registered", http.StatusSeeOther)
		return
	}
	if err != nil {
		http.Redirect(w, r, "/admin?error=Failed+to+create+user", http.StatusSeeOther)
		return
	}

	cache.Delete(r.Context(), h.rdb, balancesCacheKey)
	http.Redirect(w, r, "/admin?success=User+created", http.StatusSeeOther)
}

// ExportCSV streams one month of shifts across all users.
func (h *AdminHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !h.requireAdmin(w, r, user, authz.ActionExportTimesheets) {
		return
	}

	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		http.Error(w, "Invalid month", http.StatusBadRequest)
		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2100 {
		http.Error(w, "Invalid year", http.StatusBadRequest)
		return
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)

	rows, err := h.store.ListTimesheetsInRange(r.Context(), start, end)
	if err != nil {
		http.Error(w, "Failed to load timesheets", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("timesheets_%d_%02d.csv", year, month)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{"Employee", "Email", "Date", "Clock In", "Clock Out", "Hours", "PTO Earned"})
	for _, ts := range rows {
		writer.Write([]string{
			ts.User.Name,
			ts.User.Email,
			ts.Date.Format("2006-01-02"),
			formatClock(ts.ClockIn),
			formatClock(ts.ClockOut),
			fmt.Sprintf("%.2f", ts.TotalHours),
			fmt.Sprintf("%.2f", ts.PTOEarned),
		})
	}
}

func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request, user *models.User, action authz.Action) bool {
	err := authz.Authorize(user, action, 0)
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return false
	case err != nil:
		http.Error(w, "Forbidden", http.StatusForbidden)
		return false
	}
	return true
}
