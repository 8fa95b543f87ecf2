package demo

import (
	"context"
	"log/slog"
	"time"

	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/clog"
)

// Purger removes demo accounts and their data.
type Purger struct {
	users user.Repository
	repo  Repository
	now   func() time.Time
}

func NewPurger(users user.Repository, repo Repository) *Purger {
	return &Purger{users: users, repo: repo, now: time.Now}
}

// PurgeOnce deletes every demo user created before now. A failure on one user
// is logged and the rest are still purged.
func (p *Purger) PurgeOnce(ctx context.Context) (int, error) {
	users, err := p.users.ListDemoCreatedBefore(ctx, p.now())
	if err != nil {
		return 0, err
	}
	purged := 0
	for _, u := range users {
		if err := p.repo.PurgeUser(ctx, u.ID); err != nil {
			slog.ErrorContext(ctx, "failed to purge demo user", "user_id", u.ID, clog.ErrorAttributeKey, err)
			continue
		}
		purged++
	}
	slog.InfoContext(ctx, "demo data purged", "users", purged)
	return purged, nil
}

// Run purges at the top of every hour until ctx is done.
func (p *Purger) Run(ctx context.Context) {
	for {
		wait := NextHour(p.now()).Sub(p.now())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		if _, err := p.PurgeOnce(ctx); err != nil {
			slog.ErrorContext(ctx, "demo purge failed", clog.ErrorAttributeKey, err)
		}
	}
}

// NextHour returns the next top of the hour strictly after t.
func NextHour(t time.Time) time.Time {
	return t.Truncate(time.Hour).Add(time.Hour)
}
