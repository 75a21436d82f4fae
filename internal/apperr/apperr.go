// Package apperr classifies failures so callers can tell bad input apart from
// store and auth problems.
//
// Check the kind of any wrapped error with KindOf:
//
//	if apperr.KindOf(err) == apperr.NotFound {
//	    // goal or task does not exist
//	}
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind is the category of a failure.
type Kind string

const (
	Unknown    Kind = "unknown"
	Validation Kind = "validation"
	NotFound   Kind = "not_found"
	Conflict   Kind = "conflict"
	Store      Kind = "store"
	Auth       Kind = "auth"
)

// Common sentinel errors.
var (
	// ErrConflict is returned by a store when a versioned write lost a race.
	ErrConflict = errors.New("concurrent modification")

	// ErrInvalidCredentials is returned when email or password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken is returned on sign-up with an already registered email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrSessionNotFound is returned for unknown or expired refresh tokens.
	ErrSessionNotFound = errors.New("session not found")
)

// Error is a classified failure of operation Op.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an *Error.
func E(op string, kind Kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Errorf builds an *Error with a formatted message.
func Errorf(op string, kind Kind, format string, args ...interface{}) error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the kind of the outermost *Error in err's chain.
// A nil error has kind Unknown; so does an unclassified one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == Unknown || e.Kind == "" {
			return KindOf(e.Err)
		}
		return e.Kind
	}
	if errors.Is(err, ErrConflict) {
		return Conflict
	}
	return Unknown
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to the status code handlers respond with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case Validation:
		return fiber.StatusBadRequest
	case NotFound:
		return fiber.StatusNotFound
	case Conflict:
		return fiber.StatusConflict
	case Auth:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}
