package confluence

import (
	"errors"
	"fmt"
)

// RemoteError is returned when the Confluence API responds with a
// non-success status. The remote status code and body are preserved
// verbatim so callers can pass them through to their own clients.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("confluence returned status %d: %s", e.StatusCode, e.Body)
}

// NotFoundError is returned when a title or path does not resolve to a
// page inside the configured root subtree. Pages that exist outside the
// subtree are reported as not found on purpose.
type NotFoundError struct {
	Title string
}

func (e *NotFoundError) Error() string {
	if e.Title == "" {
		return "page not found"
	}
	return fmt.Sprintf("page titled %q not found", e.Title)
}

// InvalidOperationError is returned for structurally disallowed
// mutations, such as moving a page into its own subtree.
type InvalidOperationError struct {
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return e.Reason
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsInvalidOperation reports whether err is an InvalidOperationError.
func IsInvalidOperation(err error) bool {
	var io *InvalidOperationError
	return errors.As(err, &io)
}
