package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrCompile matches every *CompileError.
	ErrCompile = errors.New("expr: compile error")

	// ErrArityMismatch matches every *ArityError.
	ErrArityMismatch = errors.New("expr: arity mismatch")
)

// CompileError reports a formula that is malformed or reaches outside
// the allowed vocabulary.
type CompileError struct {
	Formula string
	Pos     int // byte offset into Formula, -1 if unknown
	Reason  string
}

func (e *CompileError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("expr: %q at offset %d: %s", e.Formula, e.Pos, e.Reason)
	}
	return fmt.Sprintf("expr: %q: %s", e.Formula, e.Reason)
}

func (e *CompileError) Is(target error) bool { return target == ErrCompile }

// ArityError reports a parameter vector whose length differs from the
// arity a formula was compiled with.
type ArityError struct {
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("expr: arity mismatch: want %d parameters, got %d", e.Want, e.Got)
}

func (e *ArityError) Is(target error) bool { return target == ErrArityMismatch }
