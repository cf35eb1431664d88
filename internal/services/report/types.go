package report

import (
	"taxgate/internal/services/period"
	"taxgate/internal/services/submission"
)

// Overview is the bank-facing submission summary for the current period.
type Overview struct {
	Current        period.Period     `json:"current_period"`
	Status         submission.Status `json:"status"`
	MissingPeriods []period.Period   `json:"missing_periods"`
	History        []submission.View `json:"history"`
	ActiveAgents   int64             `json:"active_agents"`
}
