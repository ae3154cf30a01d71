package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// StatusError is a non-2xx reply from the store. 4xx replies are terminal
// (validation, conflict, missing record); 5xx replies are transient.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("store replied %d: %s", e.Status, e.Message)
}

// ProtocolError marks a reply that was syntactically or semantically broken:
// malformed payload, or a record whose id does not match the request. Such
// replies are discarded and never retried.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "protocol error: " + e.Reason
}

// IsNotFound reports whether err is a 404 reply.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// IsRetryable classifies a store failure. Network-level failures (timeouts,
// resets, refused connections) and 5xx replies are transient; 4xx replies,
// protocol violations and caller-side context cancellation are terminal.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status >= 500
	}
	// Anything else reached the network layer and never produced a reply.
	return true
}
