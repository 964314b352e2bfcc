package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError reports a request that reached the server and was rejected.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// IsPreconditionFailed reports whether err is the server's authoritative
// 412 rejection of a concurrency precondition.
func IsPreconditionFailed(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusPreconditionFailed
}

// IsNotFound reports whether err is a 404 rejection.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// IsTransient classifies a failure for the retry layer. Server errors and
// throttling are worth retrying; any other definite HTTP rejection is
// authoritative and must propagate. Errors that are not StatusError are
// assumed to be connection-level (timeout, reset) and therefore transient.
func IsTransient(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500 || se.StatusCode == http.StatusTooManyRequests
	}
	return err != nil
}
