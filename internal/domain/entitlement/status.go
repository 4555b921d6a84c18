package entitlement

import "strings"

// NormalizeStatus maps a raw provider subscription status onto the status set
// above. incomplete/incomplete_expired stay distinct so /me and the admin
// views can show why a subscription never went live.
func NormalizeStatus(s string) string {
	switch strings.TrimSpace(s) {
	case "active":
		return StatusActive
	case "trialing":
		return StatusTrialing
	case "past_due", "unpaid":
		return StatusPastDue
	case "canceled":
		return StatusCanceled
	case "incomplete":
		return StatusIncomplete
	case "incomplete_expired":
		return StatusIncompleteExpired
	case "":
		return StatusNone
	default:
		return strings.TrimSpace(s)
	}
}

// LiveStatus reports whether a status keeps the paid tier. past_due does (the
// provider is still retrying payment); the incomplete pair never does.
func LiveStatus(status string) bool {
	switch status {
	case StatusActive, StatusTrialing, StatusPastDue:
		return true
	default:
		return false
	}
}
