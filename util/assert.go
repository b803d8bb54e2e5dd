// Package util carries the small set of invariant-checking helpers used
// throughout the module.
package util

import "fmt"

// Assertf panics with a formatted message if cond is false. It is reserved
// for programmer-error invariants (data structure corruption, impossible
// branches), never for caller-input validation — those return errors.
func Assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}

// AssertNoError panics if err is non-nil. Used where an error would mean
// the in-memory model is already inconsistent.
func AssertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
