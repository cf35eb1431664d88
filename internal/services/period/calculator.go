// Package period derives reporting periods for a filer. All functions are
// pure: the clock is always passed in, never read from the environment.
package period

import (
	"fmt"
	"time"

	"taxgate/internal/models"
)

// FallbackWindowMonths is how far back reporting starts when a filer's
// account-creation timestamp is unknown.
const FallbackWindowMonths = 6

// Period identifies one calendar reporting month.
type Period struct {
	Month int    `json:"month"` // 0-11, January = 0
	Year  int    `json:"year"`
	Label string `json:"label"`
}

// New builds a Period from a calendar month and year.
func New(month, year int) Period {
	return Period{
		Month: month,
		Year:  year,
		Label: fmt.Sprintf("%s %d", time.Month(month+1), year),
	}
}

// FromTime builds the Period containing t.
func FromTime(t time.Time) Period {
	return New(int(t.Month())-1, t.Year())
}

// Current returns the canonical reporting period for "now". It is computed
// independently of any submission state.
func Current(now time.Time) Period {
	return FromTime(now)
}

// Before reports whether p is strictly earlier than other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// Equal reports whether two periods name the same calendar month.
func (p Period) Equal(other Period) bool {
	return p.Year == other.Year && p.Month == other.Month
}

// Next returns the calendar month after p.
func (p Period) Next() Period {
	if p.Month == 11 {
		return New(0, p.Year+1)
	}
	return New(p.Month+1, p.Year)
}

// Matches reports whether the report was filed for p.
func (p Period) Matches(r *models.TaxReport) bool {
	return r.Month == p.Month && r.Year == p.Year
}

// Range returns every period from the filer's creation month through the
// current period inclusive, oldest first. A nil createdAt falls back to
// FallbackWindowMonths before now.
func Range(createdAt *time.Time, now time.Time) []Period {
	start := now.AddDate(0, -FallbackWindowMonths, 0)
	if createdAt != nil && !createdAt.IsZero() {
		start = *createdAt
	}

	current := Current(now)
	var all []Period
	for p := FromTime(start); !current.Before(p); p = p.Next() {
		all = append(all, p)
	}
	return all
}

// Missing returns, oldest first, every period from the filer's creation month
// through the period before current that has no report in reports. A nil
// createdAt falls back to FallbackWindowMonths before now.
func Missing(createdAt *time.Time, now time.Time, reports []models.TaxReport) []Period {
	start := now.AddDate(0, -FallbackWindowMonths, 0)
	if createdAt != nil && !createdAt.IsZero() {
		start = *createdAt
	}

	current := Current(now)
	filed := make(map[Period]bool, len(reports))
	for i := range reports {
		filed[New(reports[i].Month, reports[i].Year)] = true
	}

	var missing []Period
	for p := FromTime(start); p.Before(current); p = p.Next() {
		if !filed[p] {
			missing = append(missing, p)
		}
	}
	return missing
}
