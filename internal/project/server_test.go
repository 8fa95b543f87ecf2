package project_test

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/activity"
	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/database/dbtest"
	"github.com/kazz187/taskboard/internal/label"
	"github.com/kazz187/taskboard/internal/project"
	projectrepo "github.com/kazz187/taskboard/internal/project/repositoryimpl"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/user"
	taskrepo "github.com/kazz187/taskboard/internal/task/repositoryimpl"
	"github.com/kazz187/taskboard/internal/workspace"
	workspacerepo "github.com/kazz187/taskboard/internal/workspace/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/cerr"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"My Project":         "my-project",
		"  Hello,  World!! ": "hello-world",
		"Año 2024":           "año-2024",
		"---":                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, project.Slugify(in), in)
	}
}

func TestServer_CRUDAndCascade(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	workspaces := workspacerepo.NewGormRepository(db)
	s := project.NewServer(projectrepo.NewGormRepository(db), workspaces, nil)
	w := &workspace.Workspace{ID: ulid.Make().String(), Name: "W", OwnerID: "owner"}
	require.NoError(t, workspaces.Create(ctx, w))

	_, err := s.Create(ctx, project.CreateInput{WorkspaceID: w.ID})
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
	_, err = s.Create(ctx, project.CreateInput{WorkspaceID: "missing", Name: "x"})
	assert.True(t, cerr.IsCode(err, cerr.NotFound))

	p, err := s.Create(ctx, project.CreateInput{WorkspaceID: w.ID, Name: "Road Map"})
	require.NoError(t, err)
	assert.Equal(t, "road-map", p.Slug)
	assert.Equal(t, "Layout", p.Icon)
	assert.False(t, p.IsPublic)

	public := true
	name := "Roadmap 2"
	updated, err := s.Update(ctx, p.ID, project.UpdateInput{Name: &name, IsPublic: &public})
	require.NoError(t, err)
	assert.True(t, updated.IsPublic)
	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Roadmap 2", got.Name)
	assert.Equal(t, "road-map", got.Slug)

	list, err := s.List(ctx, w.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	tasks := taskrepo.NewGormRepository(db)
	tk := &task.Task{ID: ulid.Make().String(), Title: "t", Status: task.StatusToDo, Priority: task.PriorityLow}
	require.NoError(t, tasks.CreateBatch(ctx, p.ID, []*task.Task{tk}))
	require.NoError(t, db.Create(&activity.Activity{ID: ulid.Make().String(), TaskID: tk.ID, Type: "task"}).Error)
	require.NoError(t, db.Create(&label.Label{ID: ulid.Make().String(), Name: "bug", Color: "red", TaskID: tk.ID}).Error)

	_, err = s.Delete(ctx, p.ID)
	require.NoError(t, err)
	for _, model := range []any{&task.Task{}, &activity.Activity{}, &label.Label{}} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T", model)
	}
	_, err = s.Get(ctx, p.ID)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

// memberSet admits the listed user ids to every workspace.
type memberSet map[string]bool

func (m memberSet) RequireMember(_ context.Context, _, userID string) error {
	if m[userID] {
		return nil
	}
	return cerr.NewError(cerr.PermissionDenied, "You are not a member of this workspace", nil)
}

func asUser(id string) context.Context {
	return auth.ContextWithIdentity(context.Background(), &auth.Identity{User: &user.User{ID: id}})
}

func TestServer_AuthorizeProject(t *testing.T) {
	db := dbtest.New(t)
	workspaces := workspacerepo.NewGormRepository(db)
	s := project.NewServer(projectrepo.NewGormRepository(db), workspaces, memberSet{"ana": true})
	w := &workspace.Workspace{ID: ulid.Make().String(), Name: "W", OwnerID: "ana"}
	require.NoError(t, workspaces.Create(context.Background(), w))
	p, err := s.Create(asUser("ana"), project.CreateInput{WorkspaceID: w.ID, Name: "Plan"})
	require.NoError(t, err)

	assert.NoError(t, s.AuthorizeProject(asUser("ana"), p.ID))
	assert.NoError(t, s.AuthorizeWorkspace(asUser("ana"), w.ID))

	err = s.AuthorizeProject(asUser("mallory"), p.ID)
	assert.True(t, cerr.IsCode(err, cerr.PermissionDenied))
	err = s.AuthorizeWorkspace(asUser("mallory"), w.ID)
	assert.True(t, cerr.IsCode(err, cerr.PermissionDenied))

	err = s.AuthorizeProject(asUser("ana"), "missing")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}
