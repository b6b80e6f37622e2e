package bytecode

import "github.com/pkg/errors"

// newHostError reports an opcode-level type mismatch (e.g. concatstrings
// fed a non-string fragment) — a host-language TypeError, not a Go bug.
func newHostError(format string, args ...any) error {
	return errors.Errorf(format, args...)
}
