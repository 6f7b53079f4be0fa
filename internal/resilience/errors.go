package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kind classifies a failed external call so callers can tell "try again"
// from "give up".
type Kind int

const (
	// KindFatal covers everything not deliberately classified. Never retried.
	KindFatal Kind = iota
	// KindTransient is a network or timeout class failure. Retried with
	// exponential backoff.
	KindTransient
	// KindRateLimited means the remote told us how long to wait. Retried
	// after exactly that wait.
	KindRateLimited
	// KindUnauthorized means the credential or recipient is permanently
	// invalid. Never retried.
	KindUnauthorized
	// KindMalformed means the request itself is invalid and must be
	// corrected by the caller. Never retried.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindRateLimited:
		return "rate limited"
	case KindUnauthorized:
		return "unauthorized"
	case KindMalformed:
		return "malformed"
	default:
		return "fatal"
	}
}

// ErrExhausted is returned when a retryable operation still fails after the
// last allowed attempt. The last underlying error is wrapped alongside it.
var ErrExhausted = errors.New("retry attempts exhausted")

// ClassifiedError tags an underlying error with its failure Kind.
type ClassifiedError struct {
	Kind       Kind
	RetryAfter time.Duration // set only for KindRateLimited
	Err        error
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ClassifiedError) Unwrap() error { return e.Err }

// Transient marks err as retryable with backoff.
func Transient(err error) error {
	return &ClassifiedError{Kind: KindTransient, Err: err}
}

// RateLimited marks err as retryable after the wait the remote asked for.
func RateLimited(err error, retryAfter time.Duration) error {
	return &ClassifiedError{Kind: KindRateLimited, RetryAfter: retryAfter, Err: err}
}

// Unauthorized marks err as a permanent credential or recipient failure.
func Unauthorized(err error) error {
	return &ClassifiedError{Kind: KindUnauthorized, Err: err}
}

// Malformed marks err as an invalid-request failure.
func Malformed(err error) error {
	return &ClassifiedError{Kind: KindMalformed, Err: err}
}

// KindOf reports the failure kind of err. Timeouts count as transient;
// anything unclassified is fatal.
func KindOf(err error) Kind {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	return KindFatal
}

func retryAfterOf(err error) time.Duration {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.RetryAfter
	}
	return 0
}
