package vm

import "github.com/pkg/errors"

var (
	// ErrNameNotFound is returned when a constant, global, or method
	// lookup fails to resolve.
	ErrNameNotFound = errors.New("name not found")
	// ErrNotImplemented marks a selector with no registered builtin or
	// user-defined method.
	ErrNotImplemented = errors.New("method not implemented")
	// ErrStackOverflow guards the operand stack against runaway growth.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrFrameDepthExceeded guards recursive Send/InvokeBlock against
	// unbounded call depth.
	ErrFrameDepthExceeded = errors.New("frame depth exceeded")
	// ErrWrongArgc is returned when a builtin receives an operand it
	// cannot honor (the numeric builtins wrap it for a non-numeric
	// operand).
	ErrWrongArgc = errors.New("wrong number of arguments")
)
