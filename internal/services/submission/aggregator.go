// Package submission answers whether a filer may submit for a period, from
// the filer's stored report history. Pure functions; all I/O is the caller's.
package submission

import (
	"taxgate/internal/models"
	"taxgate/internal/services/period"
)

// Status summarizes a filer's standing for one reporting period.
type Status struct {
	Period       period.Period     `json:"period"`
	HasSubmitted bool              `json:"has_submitted"`
	HasApproved  bool              `json:"has_approved"`
	CanSubmit    bool              `json:"can_submit"`
	Report       *models.TaxReport `json:"report,omitempty"`
}

// ForPeriod computes the submission status for p from the filer's full report
// list. When several reports exist for the same period (transient migration
// state), the most recently submitted one is authoritative.
func ForPeriod(reports []models.TaxReport, p period.Period) Status {
	status := Status{Period: p}

	authoritative := Authoritative(reports, p)
	if authoritative != nil {
		status.HasSubmitted = true
		status.HasApproved = authoritative.Status == models.ReportStatusApproved
		status.Report = authoritative
	}

	status.CanSubmit = !status.HasApproved &&
		(!status.HasSubmitted || authoritative.Status == models.ReportStatusRejected)

	return status
}

// Authoritative returns the report that governs period p, or nil when none
// was filed. Ties are broken by the latest submission timestamp.
func Authoritative(reports []models.TaxReport, p period.Period) *models.TaxReport {
	var winner *models.TaxReport
	for i := range reports {
		r := &reports[i]
		if !p.Matches(r) {
			continue
		}
		if winner == nil || r.SubmittedAt.After(winner.SubmittedAt) {
			winner = r
		}
	}
	return winner
}

// View is one entry of a filer's monthly submission history.
type View struct {
	Period    period.Period     `json:"period"`
	Submitted bool              `json:"submitted"`
	Status    string            `json:"status,omitempty"`
	Report    *models.TaxReport `json:"report,omitempty"`
}

// History tags each given period with the filer's submission state for it.
// Callers pass period.Range output; the result is derived, never persisted.
func History(reports []models.TaxReport, periods []period.Period) []View {
	views := make([]View, 0, len(periods))
	for _, p := range periods {
		v := View{Period: p}
		if r := Authoritative(reports, p); r != nil {
			v.Submitted = true
			v.Status = r.Status
			v.Report = r
		}
		views = append(views, v)
	}
	return views
}
