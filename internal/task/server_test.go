package task_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/database/dbtest"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/project"
	projectrepo "github.com/kazz187/taskboard/internal/project/repositoryimpl"
	"github.com/kazz187/taskboard/internal/task"
	taskrepo "github.com/kazz187/taskboard/internal/task/repositoryimpl"
	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

type fixture struct {
	db       *gorm.DB
	bus      *eventbus.Bus
	projects *projectrepo.GormRepository
	archive  string
	server   *task.Server

	mu      sync.Mutex
	created []eventbus.TaskCreatedPayload
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	root := t.TempDir()
	archive, err := storage.NewLocalStorage(root)
	require.NoError(t, err)
	f := &fixture{
		db:       db,
		bus:      eventbus.New(),
		projects: projectrepo.NewGormRepository(db),
		archive:  root,
	}
	f.server = task.NewServer(taskrepo.NewGormRepository(db), f.projects, f.bus, archive, nil)
	eventbus.SubscribeTyped(f.bus, eventbus.TaskCreated, "test.record", func(_ context.Context, p eventbus.TaskCreatedPayload) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.created = append(f.created, p)
		return nil
	})
	return f
}

func (f *fixture) createdEvents() []eventbus.TaskCreatedPayload {
	f.bus.Wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]eventbus.TaskCreatedPayload(nil), f.created...)
}

func (f *fixture) createProject(t *testing.T, public bool) *project.Project {
	t.Helper()
	p := &project.Project{ID: ulid.Make().String(), WorkspaceID: "ws", Name: "Project", Slug: "project", IsPublic: public}
	require.NoError(t, f.projects.Create(context.Background(), p))
	return p
}

func (f *fixture) createUser(t *testing.T, name string) *user.User {
	t.Helper()
	u := &user.User{ID: ulid.Make().String(), Name: name, Email: name + "@example.com"}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *fixture) countTasks(t *testing.T, projectID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&task.Task{}).Where("project_id = ?", projectID).Count(&n).Error)
	return n
}

func TestCreate_NumbersAndPublishes(t *testing.T) {
	f := newFixture(t)
	p := f.createProject(t, false)
	assignee := f.createUser(t, "ana")
	actor := f.createUser(t, "actor")
	ctx := auth.ContextWithIdentity(context.Background(), &auth.Identity{User: actor})

	first, err := f.server.Create(ctx, p.ID, task.CreateInput{Title: "First", Status: "to-do", UserID: assignee.ID})
	require.NoError(t, err)
	second, err := f.server.Create(ctx, p.ID, task.CreateInput{Title: "Second", Status: "backlog"})
	require.NoError(t, err)

	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 2, second.Number)
	assert.Equal(t, task.PriorityLow, first.Priority)
	require.NotNil(t, first.AssigneeName)
	assert.Equal(t, "ana", *first.AssigneeName)
	assert.Nil(t, second.AssigneeName)

	events := f.createdEvents()
	require.Len(t, events, 2)
	byTask := map[string]eventbus.TaskCreatedPayload{}
	for _, e := range events {
		byTask[e.TaskID] = e
	}
	ev := byTask[first.ID]
	assert.Equal(t, assignee.ID, ev.UserID)
	assert.Equal(t, actor.ID, ev.ActorID)
	assert.Equal(t, "task", ev.Type)
	assert.Equal(t, "created the task", ev.Content)
	assert.Equal(t, "", byTask[second.ID].UserID)
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.createProject(t, false)

	tests := []struct {
		name string
		in   task.CreateInput
		code cerr.Code
	}{
		{"empty title", task.CreateInput{Title: "  ", Status: "to-do"}, cerr.InvalidArgument},
		{"unknown status", task.CreateInput{Title: "x", Status: "done"}, cerr.InvalidArgument},
		{"unknown priority", task.CreateInput{Title: "x", Status: "to-do", Priority: "critical"}, cerr.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.server.Create(ctx, p.ID, tt.in)
			assert.True(t, cerr.IsCode(err, tt.code), "got %v", err)
		})
	}

	_, err := f.server.Create(ctx, "missing", task.CreateInput{Title: "x", Status: "to-do"})
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
	assert.Zero(t, f.countTasks(t, p.ID))
}

func TestCreate_ArchivedIsPaused(t *testing.T) {
	f := newFixture(t)
	p := f.createProject(t, false)

	created, err := f.server.Create(context.Background(), p.ID, task.CreateInput{Title: "Old", Status: "archived"})
	require.NoError(t, err)
	assert.Equal(t, task.StatusPaused, created.Status)
}

func TestCreate_ConcurrentNumbersAreUnique(t *testing.T) {
	f := newFixture(t)
	p := f.createProject(t, false)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.server.Create(context.Background(), p.ID, task.CreateInput{Title: "t", Status: "to-do"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var numbers []int
	require.NoError(t, f.db.Model(&task.Task{}).Where("project_id = ?", p.ID).Order("number").Pluck("number", &numbers).Error)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, numbers)
}

func TestBoard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.createProject(t, false)
	for _, in := range []task.CreateInput{
		{Title: "A", Status: "backlog"},
		{Title: "B", Status: "to-do"},
		{Title: "C", Status: "completed"},
	} {
		_, err := f.server.Create(ctx, p.ID, in)
		require.NoError(t, err)
	}

	board, err := f.server.Board(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, board.ID)
	titles := map[task.Status][]string{}
	for _, c := range board.Columns {
		for _, tk := range c.Tasks {
			titles[c.ID] = append(titles[c.ID], tk.Title)
		}
	}
	assert.Equal(t, []string{"A"}, titles[task.StatusBacklog])
	assert.Equal(t, []string{"B"}, titles[task.StatusToDo])
	assert.Equal(t, []string{"C"}, titles[task.StatusCompleted])
	require.Len(t, board.PlannedTasks, 1)
	assert.Equal(t, "A", board.PlannedTasks[0].Title)

	_, err = f.server.Board(ctx, "missing")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestPublicBoard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	private := f.createProject(t, false)
	public := f.createProject(t, true)

	_, err := f.server.PublicBoard(ctx, private.ID)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))

	board, err := f.server.PublicBoard(ctx, public.ID)
	require.NoError(t, err)
	assert.True(t, board.IsPublic)
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.createProject(t, false)
	_, err := f.server.Create(ctx, p.ID, task.CreateInput{Title: "Existing", Status: "to-do"})
	require.NoError(t, err)
	f.createdEvents()
	f.created = nil

	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	res, err := f.server.Import(ctx, p.ID, []task.CreateInput{
		{Title: "One", Status: "backlog"},
		{Title: "Two", Status: "in-progress", Priority: "high", DueDate: &due},
		{Title: "Three", Status: "archived"},
	})
	require.NoError(t, err)

	assert.Equal(t, p.ID, res.Project.ID)
	assert.Equal(t, 3, res.Results.Total)
	assert.Equal(t, 3, res.Results.Successful)
	assert.Zero(t, res.Results.Failed)
	require.Len(t, res.Results.Tasks, 3)
	for i, r := range res.Results.Tasks {
		assert.True(t, r.Success)
		assert.Equal(t, 2+i, r.Task.Number)
	}
	assert.Equal(t, task.StatusPaused, res.Results.Tasks[2].Task.Status)

	events := f.createdEvents()
	require.Len(t, events, 3)
	for _, e := range events {
		assert.Equal(t, "create", e.Type)
		assert.Equal(t, "imported the task", e.Content)
	}
	assert.EqualValues(t, 4, f.countTasks(t, p.ID))
}

func TestImport_InvalidDescriptorWritesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.createProject(t, false)

	_, err := f.server.Import(ctx, p.ID, []task.CreateInput{
		{Title: "Good", Status: "to-do"},
		{Title: "Bad", Status: "nope"},
	})
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
	assert.Zero(t, f.countTasks(t, p.ID))
	assert.Empty(t, f.createdEvents())

	_, err = f.server.Import(ctx, "missing", []task.CreateInput{{Title: "x", Status: "to-do"}})
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

// failTaskInserts hooks task inserts. fail decides, per attempt starting at 1,
// which error the insert reports; nil lets it through. Before hooks run ahead
// of the INSERT, after hooks once the rows are written.
func failTaskInserts(t *testing.T, db *gorm.DB, after bool, fail func(attempt int32) error) *atomic.Int32 {
	t.Helper()
	var attempts atomic.Int32
	hook := func(tx *gorm.DB) {
		if tx.Statement.Table != "tasks" {
			return
		}
		if err := fail(attempts.Add(1)); err != nil {
			_ = tx.AddError(err)
		}
	}
	name := "test:fail_task_inserts"
	var err error
	if after {
		err = db.Callback().Create().After("gorm:create").Register(name, hook)
	} else {
		err = db.Callback().Create().Before("gorm:create").Register(name, hook)
	}
	require.NoError(t, err)
	return &attempts
}

func TestImport_RetriesNumberConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.createProject(t, false)
	attempts := failTaskInserts(t, f.db, false, func(n int32) error {
		if n == 1 {
			return gorm.ErrDuplicatedKey
		}
		return nil
	})

	res, err := f.server.Import(ctx, p.ID, []task.CreateInput{{Title: "One"}, {Title: "Two"}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, attempts.Load())
	require.Len(t, res.Results.Tasks, 2)
	assert.Equal(t, 1, res.Results.Tasks[0].Task.Number)
	assert.Equal(t, 2, res.Results.Tasks[1].Task.Number)
	assert.EqualValues(t, 2, f.countTasks(t, p.ID))
	assert.Len(t, f.createdEvents(), 2)
}

func TestImport_GivesUpAfterRepeatedConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.createProject(t, false)
	attempts := failTaskInserts(t, f.db, false, func(int32) error { return gorm.ErrDuplicatedKey })

	_, err := f.server.Import(ctx, p.ID, []task.CreateInput{{Title: "One"}, {Title: "Two"}})
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.AlreadyExists))
	assert.EqualValues(t, 3, attempts.Load())
	assert.Zero(t, f.countTasks(t, p.ID))
	assert.Empty(t, f.createdEvents())
}

func TestImport_FailedInsertRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.createProject(t, false)
	attempts := failTaskInserts(t, f.db, true, func(int32) error { return errors.New("disk full") })

	_, err := f.server.Import(ctx, p.ID, []task.CreateInput{{Title: "One"}, {Title: "Two"}, {Title: "Three"}})
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.Internal))
	assert.EqualValues(t, 1, attempts.Load())
	assert.Zero(t, f.countTasks(t, p.ID))
	assert.Empty(t, f.createdEvents())
}

func TestUpdateMoveDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.createProject(t, false)
	updates := make(chan eventbus.TaskUpdatedPayload, 4)
	eventbus.SubscribeTyped(f.bus, eventbus.TaskUpdated, "test.updates", func(_ context.Context, e eventbus.TaskUpdatedPayload) error {
		updates <- e
		return nil
	})

	a, err := f.server.Create(ctx, p.ID, task.CreateInput{Title: "A", Status: "to-do"})
	require.NoError(t, err)
	b, err := f.server.Create(ctx, p.ID, task.CreateInput{Title: "B", Status: "in-progress"})
	require.NoError(t, err)

	title := "A2"
	prio := "urgent"
	updated, err := f.server.Update(ctx, a.ID, task.UpdateInput{Title: &title, Priority: &prio})
	require.NoError(t, err)
	assert.Equal(t, "A2", updated.Title)
	assert.Equal(t, task.PriorityUrgent, updated.Priority)
	assert.Equal(t, task.StatusToDo, updated.Status)

	bad := "nope"
	_, err = f.server.Update(ctx, a.ID, task.UpdateInput{Status: &bad})
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))

	moved, err := f.server.Move(ctx, a.ID, task.MoveInput{Status: "in-progress"})
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, moved.Status)
	assert.Greater(t, moved.Position, b.Position)

	pos := 0.5
	moved, err = f.server.Move(ctx, a.ID, task.MoveInput{Status: "in-progress", Position: &pos})
	require.NoError(t, err)
	assert.Equal(t, 0.5, moved.Position)

	board, err := f.server.Board(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, board.Columns[2].Tasks, 2)
	assert.Equal(t, a.ID, board.Columns[2].Tasks[0].ID)

	_, err = f.server.Move(ctx, a.ID, task.MoveInput{Status: "done"})
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))

	f.bus.Wait()
	assert.Len(t, updates, 3)

	deleted, err := f.server.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, deleted.ID)
	_, err = f.server.Get(ctx, a.ID)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
	_, err = f.server.Delete(ctx, a.ID)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestExport_ArchivesDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.createProject(t, false)
	_, err := f.server.Create(ctx, p.ID, task.CreateInput{Title: "A", Status: "to-do"})
	require.NoError(t, err)

	res, err := f.server.Export(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, res.Tasks, 1)
	assert.Contains(t, res.ArchiveKey, "exports/"+p.ID+"/")

	data, err := os.ReadFile(filepath.Join(f.archive, filepath.FromSlash(res.ArchiveKey)))
	require.NoError(t, err)
	var archived task.ExportResult
	require.NoError(t, json.Unmarshal(data, &archived))
	assert.Equal(t, p.ID, archived.Project.ID)
	require.Len(t, archived.Tasks, 1)
	assert.Equal(t, "A", archived.Tasks[0].Title)
}
