package domain

import (
	"errors"
	"fmt"
)

// Kind classifies failures surfaced by the factory.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindNotFound      Kind = "not_found"
	KindGeneration    Kind = "generation"
	KindPersistence   Kind = "persistence"
)

// Sentinels for errors.Is checks against an *Error of the matching kind.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("fixture not found")
	ErrGeneration    = errors.New("generation error")
	ErrPersistence   = errors.New("persistence error")
)

// Error carries the kind of failure, the operation and fixture it happened
// in, and the underlying cause.
type Error struct {
	Kind    Kind
	Op      string
	Fixture string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Fixture != "" {
		msg += fmt.Sprintf(" (fixture %q)", e.Fixture)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (k Kind) sentinel() error {
	switch k {
	case KindConfiguration:
		return ErrConfiguration
	case KindNotFound:
		return ErrNotFound
	case KindGeneration:
		return ErrGeneration
	case KindPersistence:
		return ErrPersistence
	default:
		return nil
	}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func ConfigurationError(op, fixture string, err error) error {
	return &Error{Kind: KindConfiguration, Op: op, Fixture: fixture, Err: err}
}

func NotFoundError(op, fixture string) error {
	return &Error{Kind: KindNotFound, Op: op, Fixture: fixture}
}

func GenerationError(op, fixture string, err error) error {
	return &Error{Kind: KindGeneration, Op: op, Fixture: fixture, Err: err}
}

func PersistenceError(op, fixture string, err error) error {
	return &Error{Kind: KindPersistence, Op: op, Fixture: fixture, Err: err}
}
