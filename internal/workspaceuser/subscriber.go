package workspaceuser

import (
	"context"

	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/pkg/cerr"
)

// Subscribe wires the membership side effects of sign-up and workspace
// creation onto bus.
func (s *Server) Subscribe(bus *eventbus.Bus) {
	eventbus.SubscribeTyped(bus, eventbus.UserSignedUp, "workspaceuser.activate_pending", s.onUserSignedUp)
	eventbus.SubscribeTyped(bus, eventbus.WorkspaceCreated, "workspaceuser.create_root", s.onWorkspaceCreated)
}

func (s *Server) onUserSignedUp(ctx context.Context, p eventbus.UserSignedUpPayload) error {
	u, err := s.users.FindByEmail(ctx, p.Email)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return nil
		}
		return err
	}
	_, err = s.activator.ActivatePending(ctx, u.ID, u.Email)
	return err
}

func (s *Server) onWorkspaceCreated(ctx context.Context, p eventbus.WorkspaceCreatedPayload) error {
	_, err := s.CreateRoot(ctx, p.WorkspaceID, p.OwnerID)
	return err
}
