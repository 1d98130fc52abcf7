package ai

import "errors"

// Gateway failures, mapped from upstream HTTP statuses. Anything the
// upstream reports that is not one of the specific statuses collapses
// into ErrGatewayFailure.
var (
	ErrInvalidAPIKey      = errors.New("ai: invalid API key")
	ErrRateLimited        = errors.New("ai: rate limit exceeded")
	ErrQuotaExceeded      = errors.New("ai: quota exceeded")
	ErrGatewayFailure     = errors.New("ai: completion request failed")
	ErrUnparsableResponse = errors.New("ai: could not parse subtasks from response")
)
