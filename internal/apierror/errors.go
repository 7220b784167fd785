package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Kind classifies a service error so callers can react without parsing messages.
type Kind string

const (
	KindValidation             Kind = "validation"
	KindNotFound               Kind = "not_found"
	KindConflict               Kind = "conflict"
	KindInsufficientBalance    Kind = "insufficient_balance"
	KindInvalidStateTransition Kind = "invalid_state_transition"
	KindPersistence            Kind = "persistence"
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its kind.
var (
	ErrValidation             = errors.New("validation error")
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrPersistence            = errors.New("persistence error")
)

var sentinels = map[Kind]error{
	KindValidation:             ErrValidation,
	KindNotFound:               ErrNotFound,
	KindConflict:               ErrConflict,
	KindInsufficientBalance:    ErrInsufficientBalance,
	KindInvalidStateTransition: ErrInvalidStateTransition,
	KindPersistence:            ErrPersistence,
}

// Error is the typed error returned by the service layer.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

func newErr(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return newErr(KindValidation, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newErr(KindNotFound, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newErr(KindConflict, format, args...)
}

func InvalidTransition(format string, args ...any) *Error {
	return newErr(KindInvalidStateTransition, format, args...)
}

// Persistence wraps a store failure. A nil err returns nil.
func Persistence(msg string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	var ib *InsufficientBalanceError
	if errors.As(err, &e) || errors.As(err, &ib) {
		return err
	}
	return &Error{Kind: KindPersistence, Msg: msg, Err: err}
}

// InsufficientBalanceError carries the shortage so clients can show how much is missing.
type InsufficientBalanceError struct {
	Disponible decimal.Decimal
	Solicitado decimal.Decimal
	Msg        string
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s (disponible %s, solicitado %s)", e.Msg, e.Disponible.StringFixed(2), e.Solicitado.StringFixed(2))
}

func (e *InsufficientBalanceError) Is(target error) bool { return target == ErrInsufficientBalance }

// KindOf returns the kind of err; unknown errors are treated as persistence failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var ib *InsufficientBalanceError
	if errors.As(err, &ib) {
		return KindInsufficientBalance
	}
	return KindPersistence
}

// Message returns the client-safe message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	var ib *InsufficientBalanceError
	if errors.As(err, &ib) {
		return ib.Error()
	}
	return err.Error()
}

// HTTPStatus maps a service error to its response status.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidStateTransition:
		return http.StatusConflict
	case KindInsufficientBalance:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
