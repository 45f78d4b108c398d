// Package errors provides the tagged error values raised by the interpreter
// core (spec §7). Every abort carries a Kind so the embedding can inspect
// why a proof failed without parsing the message.
package errors

import (
	"fmt"
)

// Kind classifies an interpreter-level error.
type Kind int

const (
	// Other is the default kind, for errors with no specific classification.
	Other Kind = iota
	UndefinedPredicate
	UndefinedFunction
	NotANumber
	NotSufficientlyInstantiated
	WrongArgumentType
	Unsupported
	Syntax
	FileNotFound
	FileIO
)

func (k Kind) String() string {
	switch k {
	case UndefinedPredicate:
		return "undefined predicate"
	case UndefinedFunction:
		return "undefined arithmetic function"
	case NotANumber:
		return "argument not number"
	case NotSufficientlyInstantiated:
		return "not sufficiently instantiated"
	case WrongArgumentType:
		return "wrong argument type"
	case Unsupported:
		return "unsupported"
	case Syntax:
		return "syntax"
	case FileNotFound:
		return "file not found"
	case FileIO:
		return "file I/O"
	default:
		return "error"
	}
}

type err struct {
	kind Kind
	msg  string
	args []interface{}
}

func (e err) Error() string {
	return fmt.Sprintf(e.msg, e.args...)
}

func (e err) Kind() Kind {
	return e.kind
}

func (e err) Unwrap() error {
	for _, arg := range e.args {
		if wrapped, ok := arg.(error); ok {
			return wrapped
		}
	}
	return nil
}

// New returns an unclassified error, for cases with no meaningful Kind.
func New(msg string, args ...interface{}) error {
	return err{Other, msg, args}
}

// Newf returns an error of the given kind.
func Newf(kind Kind, msg string, args ...interface{}) error {
	return err{kind, msg, args}
}

// KindOf returns the Kind carried by e, or Other if e doesn't carry one.
func KindOf(e error) Kind {
	type kinded interface {
		Kind() Kind
	}
	if k, ok := e.(kinded); ok {
		return k.Kind()
	}
	return Other
}
