package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Service errors
var (
	ErrAlreadySubmitted       = errors.New("a report for this period is already pending or approved")
	ErrMustRevise             = errors.New("a rejected report for this period must be revised, not resubmitted")
	ErrNotReportOwner         = errors.New("report does not belong to the requesting bank")
	ErrNotEligibleForRevision = errors.New("report is not eligible for revision")
	ErrReviewNotAllowed       = errors.New("invoice is not reviewable in its current payment or review state")
	ErrReasonRequired         = errors.New("a rejection reason is required")
)

// ValidationError carries field-level messages for user-correctable input
// problems. It is distinct from the state errors above: nothing was written.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

// IsValidationError reports whether err is a field validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
