package fusionsolar

import (
	"errors"
	"fmt"
)

// Domain-specific errors for northbound API operations.
// Use errors.Is() / errors.As() to check for these in calling code.
var (
	// ErrNotLoggedIn is returned when a data call is made without a session.
	ErrNotLoggedIn = errors.New("fusionsolar: not logged in")

	// ErrLoginFailed is returned when the login call is rejected.
	ErrLoginFailed = errors.New("fusionsolar: login failed")
)

// Northbound failCode values with defined meanings.
const (
	failCodeSessionInvalid = 305
	failCodeRateLimited    = 407
)

// APIError surfaces a non-zero northbound failCode.
type APIError struct {
	Code int
	Msg  string
}

func (e APIError) Error() string {
	return fmt.Sprintf("fusionsolar api error %d: %s", e.Code, e.Msg)
}

// IsRateLimited reports whether err is the northbound access-frequency
// limit (failCode 407). The interface allows one call per type every
// few minutes; callers are expected to run less often, not retry.
func IsRateLimited(err error) bool {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == failCodeRateLimited
	}
	return false
}

// IsSessionInvalid reports whether err means the session has expired
// or was never established (failCode 305).
func IsSessionInvalid(err error) bool {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == failCodeSessionInvalid
	}
	return false
}
