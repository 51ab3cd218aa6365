// Package apperr defines the closed set of failure kinds surfaced by the
// check-in, billing and sweep components.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	MissingAuthorization  Kind = "MissingAuthorization"
	InvalidUser           Kind = "InvalidUser"
	MemberNotFound        Kind = "MemberNotFound"
	MembershipInactive    Kind = "MembershipInactive"
	MemberInactive        Kind = "MemberInactive"
	TokenNotFound         Kind = "TokenNotFound"
	TokenAlreadyUsed      Kind = "TokenAlreadyUsed"
	TokenExpired          Kind = "TokenExpired"
	StaffNotFound         Kind = "StaffNotFound"
	StaffFacilityMismatch Kind = "StaffFacilityMismatch"
	StoreWriteFailed      Kind = "StoreWriteFailed"

	InvalidRequest       Kind = "InvalidRequest"
	Forbidden            Kind = "Forbidden"
	ClassNotFound        Kind = "ClassNotFound"
	ClassUnavailable     Kind = "ClassUnavailable"
	BookingNotFound      Kind = "BookingNotFound"
	AlreadyBooked        Kind = "AlreadyBooked"
	SubscriptionNotFound Kind = "SubscriptionNotFound"
	InvalidTransition    Kind = "InvalidTransition"
	RateLimited          Kind = "RateLimited"
	Internal             Kind = "Internal"
)

var statusByKind = map[Kind]int{
	MissingAuthorization:  http.StatusUnauthorized,
	InvalidUser:           http.StatusUnauthorized,
	MemberNotFound:        http.StatusNotFound,
	MembershipInactive:    http.StatusForbidden,
	MemberInactive:        http.StatusForbidden,
	TokenNotFound:         http.StatusNotFound,
	TokenAlreadyUsed:      http.StatusConflict,
	TokenExpired:          http.StatusGone,
	StaffNotFound:         http.StatusForbidden,
	StaffFacilityMismatch: http.StatusForbidden,
	StoreWriteFailed:      http.StatusServiceUnavailable,
	InvalidRequest:        http.StatusBadRequest,
	Forbidden:             http.StatusForbidden,
	ClassNotFound:         http.StatusNotFound,
	ClassUnavailable:      http.StatusConflict,
	BookingNotFound:       http.StatusNotFound,
	AlreadyBooked:         http.StatusConflict,
	SubscriptionNotFound:  http.StatusNotFound,
	InvalidTransition:     http.StatusConflict,
	RateLimited:           http.StatusTooManyRequests,
	Internal:              http.StatusInternalServerError,
}

// Status returns the HTTP status code for kind.
func (k Kind) Status() int {
	if code, ok := statusByKind[k]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// Error carries a Kind plus the operation that produced it and an optional
// underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so sentinels like ErrTokenExpired
// work with errors.Is regardless of Op or cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, op string) error {
	return &Error{Kind: kind, Op: op}
}

func Wrap(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the Kind of err, or Internal when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

var (
	ErrMissingAuthorization  = &Error{Kind: MissingAuthorization}
	ErrInvalidUser           = &Error{Kind: InvalidUser}
	ErrMemberNotFound        = &Error{Kind: MemberNotFound}
	ErrMembershipInactive    = &Error{Kind: MembershipInactive}
	ErrMemberInactive        = &Error{Kind: MemberInactive}
	ErrTokenNotFound         = &Error{Kind: TokenNotFound}
	ErrTokenAlreadyUsed      = &Error{Kind: TokenAlreadyUsed}
	ErrTokenExpired          = &Error{Kind: TokenExpired}
	ErrStaffNotFound         = &Error{Kind: StaffNotFound}
	ErrStaffFacilityMismatch = &Error{Kind: StaffFacilityMismatch}
	ErrStoreWriteFailed      = &Error{Kind: StoreWriteFailed}
)
