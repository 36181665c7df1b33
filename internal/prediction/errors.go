package prediction

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// PredictionError is a transport-level failure: the backend could not be
// reached (StatusCode 0) or answered with a non-2xx status.
type PredictionError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *PredictionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("prediction request failed with status %d", e.StatusCode)
}

func (e *PredictionError) Unwrap() error { return e.Err }

// Unreachable reports whether the request never got an HTTP response
// because the backend could not be contacted. Timeouts and cancellations
// are reported separately.
func (e *PredictionError) Unreachable() bool {
	return e.StatusCode == 0 && !e.Timeout() && !e.Canceled()
}

// Timeout reports whether the request ran out of time before a response
// arrived, either through the client timeout or the caller's deadline.
func (e *PredictionError) Timeout() bool {
	if e.StatusCode != 0 || e.Err == nil {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(e.Err, &nerr) && nerr.Timeout()
}

// Canceled reports whether the caller gave up on the request.
func (e *PredictionError) Canceled() bool {
	return e.StatusCode == 0 && errors.Is(e.Err, context.Canceled)
}

// InvalidResponseError means the backend answered 2xx but the body does not
// describe a usable prediction.
type InvalidResponseError struct {
	Message string
}

func (e *InvalidResponseError) Error() string { return e.Message }
