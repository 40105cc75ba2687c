// Package taulerr holds the error objects shared across the TAUL core. It
// contains the Error type, which can be created with one or more 'cause'
// errors, and a set of named diagnostic sentinels raised by the grammar
// loader (see Code and Counter).
//
// Calling errors.Is() on Error with an argument matching any of its causes
// returns true, following the same shape as a typed server error.
package taulerr

import "errors"

var (
	ErrInternal       = errors.New("internal error")
	ErrRuleNotFound    = errors.New("rule not found")
	ErrNotLL1          = errors.New("grammar is not LL(1)")
	ErrAmbiguous       = errors.New("grammar is ambiguous")
	ErrMalformedSource = errors.New("spec source is malformed")
)

// Error is a typed error returned by functions in the TAUL core as their
// error value. It contains a message explaining what happened as well as
// zero or more error values it considers to be its causes. Error is
// compatible with errors.Is: calling errors.Is on an Error value along with
// any value it holds as a cause returns true, without manual typecasting.
//
// If Error has at least one cause, Error() is its message with the first
// cause's Error() appended. Error should not be constructed directly; call
// New.
type Error struct {
	msg   string
	cause []error
}

func (e Error) Error() string {
	if e.msg == "" && e.cause != nil {
		return e.cause[0].Error()
	}
	if e.cause != nil {
		return e.msg + ": " + e.cause[0].Error()
	}
	return e.msg
}

// Unwrap returns the causes of Error, or nil if none were given.
func (e Error) Unwrap() []error {
	if len(e.cause) > 0 {
		return e.cause
	}
	return nil
}

// Is returns whether Error either is the target error itself or has target
// as one of its causes.
func (e Error) Is(target error) bool {
	if errTarget, ok := target.(Error); ok {
		if e.msg == errTarget.msg && len(e.cause) == len(errTarget.cause) {
			allEqual := true
			for i := range e.cause {
				if e.cause[i] != errTarget.cause[i] {
					allEqual = false
					break
				}
			}
			if allEqual {
				return true
			}
		}
	}
	for _, c := range e.cause {
		if c == target {
			return true
		}
	}
	return false
}

// New creates an Error with the given message and zero or more causes.
func New(msg string, causes ...error) Error {
	err := Error{msg: msg}
	if len(causes) > 0 {
		err.cause = make([]error, len(causes))
		copy(err.cause, causes)
	}
	return err
}
