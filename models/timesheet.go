package models

import (
	"math"
	"time"
)

// PTOAccrualRate converts worked hours into earned PTO hours.
const PTOAccrualRate = 0.05

// ClockTimeLayout is the format used for manual timestamp edits:
// local date-time, minute precision, no zone.
const ClockTimeLayout = "2006-01-02T15:04"

type Timesheet struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	User       User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Date       time.Time  `gorm:"not null;type:date" json:"date"`
	ClockIn    *time.Time `json:"clock_in"`
	ClockOut   *time.Time `json:"clock_out"`
	TotalHours float64    `gorm:"not null;default:0" json:"total_hours"`
	PTOEarned  float64    `gorm:"not null;default:0" json:"pto_earned"`
}

// IsOpen reports whether the shift has been started but not finished.
func (t *Timesheet) IsOpen() bool {
	return t.ClockIn != nil && t.ClockOut == nil
}

// Recompute refreshes the derived fields from the clock timestamps.
// Must be called after any change to ClockIn or ClockOut.
func (t *Timesheet) Recompute() {
	t.TotalHours, t.PTOEarned = ComputeDerived(t.ClockIn, t.ClockOut)
}

// ComputeDerived turns a pair of optional clock timestamps into worked
// hours and earned PTO. A clock-out earlier than clock-in yields 0 hours,
// never a negative value.
func ComputeDerived(clockIn, clockOut *time.Time) (hours, pto float64) {
	if clockIn == nil || clockOut == nil {
		return 0, 0
	}
	hours = round2(math.Max(clockOut.Sub(*clockIn).Seconds()/3600, 0))
	pto = round2(hours * PTOAccrualRate)
	return hours, pto
}

// ParseClockTime parses a manual edit field. An empty value means the
// timestamp is being cleared and parses to nil.
func ParseClockTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(ClockTimeLayout, value, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Aggregate sums worked hours and PTO balance across a user's shifts.
func Aggregate(shifts []Timesheet) (totalHours, ptoBalance float64) {
	for _, s := range shifts {
		totalHours += s.TotalHours
		ptoBalance += s.PTOEarned
	}
	return round2(totalHours), round2(ptoBalance)
}

// FindOpenShift returns the user's open shift, or nil if there is none.
// At most one shift should ever be open; if that has been violated by a
// manual edit, the most recently created one wins.
func FindOpenShift(shifts []Timesheet) *Timesheet {
	var open *Timesheet
	for i := range shifts {
		if !shifts[i].IsOpen() {
			continue
		}
		if open == nil || shifts[i].ID > open.ID {
			open = &shifts[i]
		}
	}
	return open
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
