// Package panicerr turns panics in background work into ordinary errors.
package panicerr

import (
	"context"

	"github.com/sourcegraph/conc/panics"
)

// SafeContext returns fn wrapped so that a panic comes back as an error
// carrying the recovered value and stack.
func SafeContext(fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) (err error) {
		var catcher panics.Catcher
		catcher.Try(func() { err = fn(ctx) })
		if r := catcher.Recovered(); r != nil {
			return r.AsError()
		}
		return err
	}
}
