package workspaceuser_test

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kazz187/taskboard/internal/auth"
	authrepo "github.com/kazz187/taskboard/internal/auth/repositoryimpl"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/database/dbtest"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/user"
	userrepo "github.com/kazz187/taskboard/internal/user/repositoryimpl"
	"github.com/kazz187/taskboard/internal/workspace"
	workspacerepo "github.com/kazz187/taskboard/internal/workspace/repositoryimpl"
	"github.com/kazz187/taskboard/internal/workspaceuser"
	wurepo "github.com/kazz187/taskboard/internal/workspaceuser/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/cerr"
)

type fixture struct {
	db         *gorm.DB
	bus        *eventbus.Bus
	users      *userrepo.GormRepository
	workspaces *workspacerepo.GormRepository
	members    *wurepo.GormRepository
	activator  *workspaceuser.Activator
	server     *workspaceuser.Server
	auth       *auth.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	f := &fixture{
		db:         db,
		bus:        eventbus.New(),
		users:      userrepo.NewGormRepository(db),
		workspaces: workspacerepo.NewGormRepository(db),
		members:    wurepo.NewGormRepository(db),
	}
	f.activator = workspaceuser.NewActivator(f.members, workspaceuser.NewMemoryGuard(time.Minute))
	f.server = workspaceuser.NewServer(f.members, f.workspaces, f.users, f.activator)
	f.server.Subscribe(f.bus)

	authEnv := &config.AuthEnv{SessionSecret: "test-secret", SessionTTL: time.Hour, CookieName: "taskboard_session"}
	sessions := auth.NewSessionManager(authEnv, authrepo.NewGormSessionRepository(db))
	f.auth = auth.NewServer(authEnv, &config.DemoEnv{}, f.users, sessions, f.bus, f.activator)
	return f
}

func (f *fixture) wait() {
	f.bus.Wait()
	f.activator.Wait()
}

func (f *fixture) createUser(t *testing.T, name, email, password string) *user.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u := &user.User{ID: ulid.Make().String(), Name: name, Email: email}
	a := &user.Account{ID: ulid.Make().String(), UserID: u.ID, ProviderID: user.ProviderCredential, Password: hash}
	require.NoError(t, f.users.Create(context.Background(), u, a))
	return u
}

func (f *fixture) createWorkspace(t *testing.T, owner *user.User) *workspace.Workspace {
	t.Helper()
	w := &workspace.Workspace{ID: ulid.Make().String(), Name: "Acme", OwnerID: owner.ID}
	require.NoError(t, f.workspaces.Create(context.Background(), w))
	_, err := f.server.CreateRoot(context.Background(), w.ID, owner.ID)
	require.NoError(t, err)
	return w
}

func TestInvite_BeforeSignUpActivatesOnSignUp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.createUser(t, "Owner", "owner@example.com", "password1")
	w := f.createWorkspace(t, owner)

	invited, err := f.server.Invite(ctx, owner.ID, w.ID, "  U@X.com ")
	require.NoError(t, err)
	assert.Equal(t, "u@x.com", invited.UserEmail)
	assert.Empty(t, invited.UserID)
	assert.Equal(t, workspaceuser.StatusPending, invited.Status)

	res, err := f.auth.SignUp(ctx, auth.SignUpInput{Name: "U", Email: "u@x.com", Password: "password1"})
	require.NoError(t, err)
	f.wait()

	got, err := f.members.Get(ctx, invited.ID)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, got.UserID)
	assert.Equal(t, workspaceuser.StatusActive, got.Status)
	assert.NotNil(t, got.JoinedAt)

	active, err := f.server.ListActive(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, active, 2)
	names := []string{active[0].UserName, active[1].UserName}
	assert.ElementsMatch(t, []string{"Owner", "U"}, names)
}

func TestInvite_ExistingUserIsLinked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.createUser(t, "Owner", "owner@example.com", "password1")
	bob := f.createUser(t, "Bob", "bob@example.com", "password1")
	w := f.createWorkspace(t, owner)

	invited, err := f.server.Invite(ctx, owner.ID, w.ID, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, invited.UserID)
	assert.Equal(t, workspaceuser.StatusPending, invited.Status)
}

func TestInvite_Duplicate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.createUser(t, "Owner", "owner@example.com", "password1")
	w := f.createWorkspace(t, owner)

	_, err := f.server.Invite(ctx, owner.ID, w.ID, "dup@example.com")
	require.NoError(t, err)

	_, err = f.server.Invite(ctx, owner.ID, w.ID, "DUP@example.com")
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
	assert.Contains(t, err.Error(), "User is already invited to this workspace")

	_, err = f.server.Invite(ctx, owner.ID, w.ID, "owner@example.com")
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument), "owner already has a membership")

	var count int64
	require.NoError(t, f.db.Model(&workspaceuser.WorkspaceUser{}).Where("user_email = ?", "dup@example.com").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestInvite_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.createUser(t, "Owner", "owner@example.com", "password1")
	stranger := f.createUser(t, "Eve", "eve@example.com", "password1")
	w := f.createWorkspace(t, owner)

	_, err := f.server.Invite(ctx, owner.ID, "missing", "a@example.com")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))

	_, err = f.server.Invite(ctx, owner.ID, w.ID, "not-an-email")
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))

	_, err = f.server.Invite(ctx, stranger.ID, w.ID, "a@example.com")
	assert.True(t, cerr.IsCode(err, cerr.PermissionDenied))
}

func TestActivatePending_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.createUser(t, "Owner", "owner@example.com", "password1")
	w := f.createWorkspace(t, owner)
	w2 := f.createWorkspace(t, owner)
	_, err := f.server.Invite(ctx, owner.ID, w.ID, "late@example.com")
	require.NoError(t, err)
	_, err = f.server.Invite(ctx, owner.ID, w2.ID, "late@example.com")
	require.NoError(t, err)
	late := f.createUser(t, "Late", "late@example.com", "password1")

	first, err := f.activator.ActivatePending(ctx, late.ID, late.Email)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := f.activator.ActivatePending(ctx, late.ID, late.Email)
	require.NoError(t, err)
	assert.Empty(t, second)

	members, err := f.server.ListActive(ctx, w.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestSignIn_ActivatesThroughGuard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.createUser(t, "Owner", "owner@example.com", "password1")
	w := f.createWorkspace(t, owner)
	carol := f.createUser(t, "Carol", "carol@example.com", "password1")
	invited, err := f.server.Invite(ctx, owner.ID, w.ID, "carol@example.com")
	require.NoError(t, err)

	_, err = f.auth.SignIn(ctx, auth.SignInInput{Email: "carol@example.com", Password: "password1"})
	require.NoError(t, err)
	f.wait()

	got, err := f.members.Get(ctx, invited.ID)
	require.NoError(t, err)
	assert.Equal(t, carol.ID, got.UserID)
	assert.Equal(t, workspaceuser.StatusActive, got.Status)
}

func TestWorkspaceCreated_CreatesRoot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.createUser(t, "Owner", "owner@example.com", "password1")
	w := &workspace.Workspace{ID: ulid.Make().String(), Name: "Evented", OwnerID: owner.ID}
	require.NoError(t, f.workspaces.Create(ctx, w))

	payload := eventbus.WorkspaceCreatedPayload{WorkspaceID: w.ID, OwnerID: owner.ID}
	require.NoError(t, f.bus.Publish(ctx, eventbus.WorkspaceCreated, payload))
	require.NoError(t, f.bus.Publish(ctx, eventbus.WorkspaceCreated, payload))
	f.wait()

	members, err := f.server.List(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, owner.ID, members[0].UserID)
	assert.Equal(t, workspaceuser.RoleOwner, members[0].Role)
	assert.Equal(t, workspaceuser.StatusActive, members[0].Status)
}

func TestCreateRoot_OnlyOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.createUser(t, "Owner", "owner@example.com", "password1")
	outsider := f.createUser(t, "Outsider", "outsider@example.com", "password1")
	w := f.createWorkspace(t, owner)

	_, err := f.server.CreateRoot(ctx, w.ID, outsider.ID)
	assert.True(t, cerr.IsCode(err, cerr.PermissionDenied))
	_, err = f.members.FindForUser(ctx, w.ID, outsider.ID, outsider.Email)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))

	_, err = f.server.Invite(ctx, outsider.ID, w.ID, "friend@x.com")
	assert.True(t, cerr.IsCode(err, cerr.PermissionDenied))
	assert.True(t, cerr.IsCode(f.server.RequireMember(ctx, w.ID, outsider.ID), cerr.PermissionDenied))
	assert.NoError(t, f.server.RequireMember(ctx, w.ID, owner.ID))
	assert.True(t, cerr.IsCode(f.server.RequireMember(ctx, "missing", owner.ID), cerr.NotFound))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.createUser(t, "Owner", "owner@example.com", "password1")
	w := f.createWorkspace(t, owner)
	_, err := f.server.Invite(ctx, owner.ID, w.ID, "gone@example.com")
	require.NoError(t, err)

	_, err = f.server.Delete(ctx, owner.ID, w.ID, owner.ID)
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))

	deleted, err := f.server.Delete(ctx, owner.ID, w.ID, "gone@example.com")
	require.NoError(t, err)
	assert.Equal(t, "gone@example.com", deleted.UserEmail)

	_, err = f.server.Delete(ctx, owner.ID, w.ID, "gone@example.com")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestDelete_OwnerCannotBeRemovedByEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.createUser(t, "Owner", "owner@example.com", "password1")
	w := f.createWorkspace(t, owner)

	_, err := f.server.Delete(ctx, owner.ID, w.ID, owner.Email)
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))

	root, err := f.members.FindForUser(ctx, w.ID, owner.ID, "")
	require.NoError(t, err)
	assert.Equal(t, workspaceuser.RoleOwner, root.Role)
}

func TestDelete_MembersRemoveOnlyThemselves(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.createUser(t, "Owner", "owner@example.com", "password1")
	ana := f.createUser(t, "Ana", "ana@example.com", "password1")
	bob := f.createUser(t, "Bob", "bob@example.com", "password1")
	w := f.createWorkspace(t, owner)
	for _, email := range []string{ana.Email, bob.Email} {
		_, err := f.server.Invite(ctx, owner.ID, w.ID, email)
		require.NoError(t, err)
	}

	_, err := f.server.Delete(ctx, ana.ID, w.ID, bob.Email)
	assert.True(t, cerr.IsCode(err, cerr.PermissionDenied))

	deleted, err := f.server.Delete(ctx, ana.ID, w.ID, ana.Email)
	require.NoError(t, err)
	assert.Equal(t, ana.ID, deleted.UserID)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.createUser(t, "Owner", "owner@example.com", "password1")
	member := f.createUser(t, "Member", "member@example.com", "password1")
	w := f.createWorkspace(t, owner)
	_, err := f.server.Invite(ctx, owner.ID, w.ID, member.Email)
	require.NoError(t, err)

	_, err = f.server.UpdateStatus(ctx, member.ID, "archived")
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))

	// Activation is one-way.
	_, err = f.server.UpdateStatus(ctx, owner.ID, "pending")
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
	root, err := f.members.FindForUser(ctx, w.ID, owner.ID, "")
	require.NoError(t, err)
	assert.Equal(t, workspaceuser.StatusActive, root.Status)

	updated, err := f.server.UpdateStatus(ctx, member.ID, "active")
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, workspaceuser.StatusActive, updated[0].Status)
}

func TestResetMemberPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.createUser(t, "Owner", "owner@example.com", "password1")
	member := f.createUser(t, "Member", "member@example.com", "password1")
	w := f.createWorkspace(t, owner)

	t.Run("owner resets", func(t *testing.T) {
		err := f.server.ResetMemberPassword(ctx, owner.ID, w.ID, workspaceuser.ResetPasswordInput{UserID: member.ID, Password: "brand-new-pass"})
		require.NoError(t, err)
		account, err := f.users.GetCredentialAccount(ctx, member.ID)
		require.NoError(t, err)
		ok, err := auth.VerifyPassword(account.Password, "brand-new-pass")
		require.NoError(t, err)
		assert.True(t, ok)
	})
	t.Run("short password", func(t *testing.T) {
		err := f.server.ResetMemberPassword(ctx, owner.ID, w.ID, workspaceuser.ResetPasswordInput{UserID: member.ID, Password: "short"})
		assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
	})
	t.Run("missing workspace", func(t *testing.T) {
		err := f.server.ResetMemberPassword(ctx, owner.ID, "missing", workspaceuser.ResetPasswordInput{UserID: member.ID, Password: "password2"})
		assert.True(t, cerr.IsCode(err, cerr.NotFound))
	})
	t.Run("not owner", func(t *testing.T) {
		err := f.server.ResetMemberPassword(ctx, member.ID, w.ID, workspaceuser.ResetPasswordInput{UserID: owner.ID, Password: "password2"})
		require.Error(t, err)
		assert.True(t, cerr.IsCode(err, cerr.PermissionDenied))
		assert.Contains(t, err.Error(), "Only the workspace owner can reset member passwords")
	})
	t.Run("unknown account", func(t *testing.T) {
		err := f.server.ResetMemberPassword(ctx, owner.ID, w.ID, workspaceuser.ResetPasswordInput{UserID: "nobody", Password: "password2"})
		require.Error(t, err)
		assert.True(t, cerr.IsCode(err, cerr.NotFound))
		assert.Contains(t, err.Error(), "User account not found")
	})
}
