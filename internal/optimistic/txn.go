// Package optimistic applies a state change before the server confirms it
// and undoes it when the server refuses.
package optimistic

import (
	"context"
	"sync"
)

// Txn is one tentative change. Apply runs immediately; Revert is the
// inverse transform, run at most once.
type Txn struct {
	apply  func()
	revert func()
	once   sync.Once
}

// New builds a Txn from a forward transform and its inverse.
func New(apply, revert func()) *Txn {
	return &Txn{apply: apply, revert: revert}
}

// Revert runs the inverse transform. Calls after the first are no-ops.
func (t *Txn) Revert() {
	t.once.Do(func() {
		if t.revert != nil {
			t.revert()
		}
	})
}

// Run applies the change, performs remote, and reverts when remote fails.
// The remote error is returned unchanged.
func (t *Txn) Run(ctx context.Context, remote func(context.Context) error) error {
	if t.apply != nil {
		t.apply()
	}
	if err := remote(ctx); err != nil {
		t.Revert()
		return err
	}
	return nil
}

// Do is New(apply, revert).Run(ctx, remote).
func Do(ctx context.Context, apply, revert func(), remote func(context.Context) error) error {
	return New(apply, revert).Run(ctx, remote)
}
