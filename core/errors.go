package core

import (
	"errors"
	"fmt"
)

// Code is a short machine-checkable failure reason, stable across releases.
type Code string

const (
	// CodeParameterValidation rejects bad creation parameters before any
	// instance exists.
	CodeParameterValidation Code = "parameter_validation"
	// CodeStageViolation rejects an operation called outside its required
	// stage, including deadline gates that have not yet passed.
	CodeStageViolation Code = "stage_violation"
	// CodePaymentMismatch rejects a call whose attached value differs from
	// the amount the operation requires.
	CodePaymentMismatch Code = "payment_mismatch"
	// CodeUnauthorized rejects a caller that is not the registry, seller,
	// top bidder, or committed bidder the guard requires.
	CodeUnauthorized Code = "unauthorized"
	// CodeRevealMismatch rejects a disclosure whose amount+salt does not
	// hash to the stored commitment. The attached deposit is forfeited.
	CodeRevealMismatch Code = "reveal_mismatch"
	// CodeNoBalance rejects a withdrawal with nothing owed.
	CodeNoBalance Code = "no_balance"
)

// Error is a guard failure surfaced by an auction operation. Every guard
// failure aborts the whole call; Forfeit marks the two deliberate exceptions
// where the attached value is retained by the instance instead of returned.
type Error struct {
	Code    Code
	Reason  string
	Forfeit bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

// Errf builds a guard failure with a formatted reason.
func Errf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// ForfeitErrf builds a guard failure that retains the attached value.
func ForfeitErrf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Reason: fmt.Sprintf(format, args...), Forfeit: true}
}

// CodeOf extracts the machine-checkable code from err, or "" if err is not a
// guard failure.
func CodeOf(err error) Code {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}
