package davclient

import (
	"fmt"

	"davsync/internal/httpclient"
)

// ConflictError reports a server-side precondition failure (HTTP 412): the
// resource changed under the caller since it was last read. It is never
// retried automatically, because re-applying a stale precondition cannot
// succeed.
type ConflictError struct {
	Resource string // "event" or "contact"
	URL      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s at %s was modified concurrently: re-read it and retry the operation", e.Resource, e.URL)
}

// IsTransient reports whether a failure is worth retrying. Definite HTTP
// rejections, precondition failures included, are not.
func IsTransient(err error) bool {
	return httpclient.IsTransient(err)
}

// IsPreconditionFailed reports whether err stems from a 412 response.
func IsPreconditionFailed(err error) bool {
	return httpclient.IsPreconditionFailed(err)
}

// IsNotFound reports whether err stems from a 404 response.
func IsNotFound(err error) bool {
	return httpclient.IsNotFound(err)
}
