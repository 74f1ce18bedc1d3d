package weather

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Capability names what was asked of a provider.
type Capability string

const (
	CapabilityCurrent    Capability = "current"
	CapabilityForecast   Capability = "forecast"
	CapabilityAirQuality Capability = "air-quality"
	CapabilityGeocoding  Capability = "geocoding"
)

// Reason classifies an upstream failure without exposing transport detail.
type Reason string

const (
	ReasonTimeout      Reason = "timeout"
	ReasonStatus       Reason = "status"
	ReasonMalformed    Reason = "malformed"
	ReasonEmpty        Reason = "empty"
	ReasonUnconfigured Reason = "unconfigured"
	ReasonCircuitOpen  Reason = "circuit-open"
	ReasonTransport    Reason = "transport"
)

var (
	// ErrPrimaryData is wrapped by Compose when current conditions or the forecast could not be fetched.
	ErrPrimaryData = errors.New("primary weather data unavailable")

	// Reason sentinels; adapters wrap them so Classify can recover the Reason.
	ErrStatus       = errors.New("unexpected status")
	ErrMalformed    = errors.New("malformed payload")
	ErrEmpty        = errors.New("empty payload")
	ErrUnconfigured = errors.New("provider not configured")
	ErrCircuitOpen  = errors.New("circuit breaker open")
)

// UpstreamError is the failure of a single adapter call.
type UpstreamError struct {
	Provider   string
	Capability Capability
	Reason     Reason
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Provider, e.Capability, e.Reason)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Classify turns an adapter error into an UpstreamError.
func Classify(provider string, capability Capability, err error) *UpstreamError {
	if err == nil {
		return nil
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue
	}
	return &UpstreamError{
		Provider:   provider,
		Capability: capability,
		Reason:     reasonOf(err),
		Err:        err,
	}
}

func reasonOf(err error) Reason {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return ReasonTimeout
	case errors.Is(err, ErrCircuitOpen):
		return ReasonCircuitOpen
	case errors.Is(err, ErrUnconfigured):
		return ReasonUnconfigured
	case errors.Is(err, ErrStatus):
		return ReasonStatus
	case errors.Is(err, ErrEmpty):
		return ReasonEmpty
	case errors.Is(err, ErrMalformed):
		return ReasonMalformed
	default:
		return ReasonTransport
	}
}

// Result is the outcome of one adapter call: a value or an UpstreamError.
type Result[T any] struct {
	Value T
	Err   *UpstreamError
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail wraps an upstream failure.
func Fail[T any](err *UpstreamError) Result[T] {
	return Result[T]{Err: err}
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// NormalizationError records a field that was missing from an otherwise successful payload.
// It is never fatal; the field renders as a placeholder.
type NormalizationError struct {
	Provider string
	Field    string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("%s payload missing %s", e.Provider, e.Field)
}
