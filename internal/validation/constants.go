package validation

import "regexp"

const (
	// Password requirements
	MinPasswordLength = 8
	MaxPasswordLength = 72

	// String lengths
	MaxReasonLength   = 500
	MaxDocumentLength = 255

	// Profit percentage bounds for submitted figures
	MinProfitPercent = 0
	MaxProfitPercent = 100
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)
