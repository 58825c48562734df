package qibla

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrorKind classifies the failures the engine can report.
type ErrorKind int

const (
	LocationPermissionDenied ErrorKind = iota + 1
	LocationUnavailable
	LocationTimeout
	OrientationPermissionDenied
	OrientationUnsupported
)

func (k ErrorKind) String() string {
	switch k {
	case LocationPermissionDenied:
		return "LocationPermissionDenied"
	case LocationUnavailable:
		return "LocationUnavailable"
	case LocationTimeout:
		return "LocationTimeout"
	case OrientationPermissionDenied:
		return "OrientationPermissionDenied"
	case OrientationUnsupported:
		return "OrientationUnsupported"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Message is the user-facing text for the kind.
func (k ErrorKind) Message() string {
	switch k {
	case LocationPermissionDenied:
		return "Location access was denied. Allow location access in your settings and try again."
	case LocationUnavailable:
		return "Your location could not be determined. Try again."
	case LocationTimeout:
		return "Locating you took too long. Try again."
	case OrientationPermissionDenied:
		return "Compass access was denied. Use the angle shown with an external compass."
	case OrientationUnsupported:
		return "This device has no built-in compass. Use the angle shown with an external compass."
	default:
		return "An unexpected error occurred."
	}
}

// Retryable reports whether offering the user a retry makes sense.
func (k ErrorKind) Retryable() bool {
	return k != OrientationUnsupported
}

// IsLocation reports whether the kind belongs to a location request.
func (k ErrorKind) IsLocation() bool {
	return k == LocationPermissionDenied || k == LocationUnavailable || k == LocationTimeout
}

// Error is returned by engine operations. Two *Error values match under
// errors.Is when their kinds are equal.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrLocationPermissionDenied    = &Error{Kind: LocationPermissionDenied}
	ErrLocationUnavailable         = &Error{Kind: LocationUnavailable}
	ErrLocationTimeout             = &Error{Kind: LocationTimeout}
	ErrOrientationPermissionDenied = &Error{Kind: OrientationPermissionDenied}
	ErrOrientationUnsupported      = &Error{Kind: OrientationUnsupported}
)

// KindOf extracts the ErrorKind carried by err, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// ClassifyLocationError maps a provider failure onto one of the three
// location error kinds.
func ClassifyLocationError(err error) error {
	if err == nil {
		return nil
	}
	if k := KindOf(err); k.IsLocation() {
		return err
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: LocationTimeout, Err: err}
	case errors.Is(err, os.ErrPermission):
		return &Error{Kind: LocationPermissionDenied, Err: err}
	default:
		return &Error{Kind: LocationUnavailable, Err: err}
	}
}
