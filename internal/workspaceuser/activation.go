package workspaceuser

import (
	"context"
	"log/slog"

	"github.com/sourcegraph/conc"

	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/clog"
	"github.com/kazz187/taskboard/pkg/panicerr"
)

// Activator turns pending memberships active once their user is known.
type Activator struct {
	repo  Repository
	guard Guard
	wg    conc.WaitGroup
}

func NewActivator(repo Repository, guard Guard) *Activator {
	return &Activator{repo: repo, guard: guard}
}

// ActivatePending links and activates every pending membership addressed to
// userID or email. Running it again is a no-op.
func (a *Activator) ActivatePending(ctx context.Context, userID, email string) ([]*WorkspaceUser, error) {
	activated, err := a.repo.ActivatePending(ctx, userID, email)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "activated pending workspace users", "user_id", userID, "activated", len(activated))
	return activated, nil
}

// OnAuthenticated starts a background sweep unless one ran for u within the
// guard's window. A failed sweep releases the guard immediately.
func (a *Activator) OnAuthenticated(ctx context.Context, u *user.User) {
	ok, err := a.guard.TryAcquire(ctx, u.ID)
	if err != nil {
		slog.WarnContext(ctx, "activation guard unavailable", "user_id", u.ID, clog.ErrorAttributeKey, err)
		return
	}
	if !ok {
		return
	}
	bg := context.WithoutCancel(ctx)
	a.wg.Go(func() {
		sweep := panicerr.SafeContext(func(ctx context.Context) error {
			_, err := a.ActivatePending(ctx, u.ID, u.Email)
			return err
		})
		if err := sweep(bg); err != nil {
			slog.ErrorContext(bg, "failed to activate pending workspace users", "user_id", u.ID, clog.ErrorAttributeKey, err)
			if err := a.guard.Release(bg, u.ID); err != nil {
				slog.ErrorContext(bg, "failed to release activation guard", "user_id", u.ID, clog.ErrorAttributeKey, err)
			}
		}
	})
}

// Wait blocks until background sweeps finish.
func (a *Activator) Wait() {
	a.wg.Wait()
}
