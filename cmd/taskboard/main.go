package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"gorm.io/gorm"

	"github.com/kazz187/taskboard/internal/activity"
	activityrepo "github.com/kazz187/taskboard/internal/activity/repositoryimpl"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/database"
	"github.com/kazz187/taskboard/internal/demo"
	demorepo "github.com/kazz187/taskboard/internal/demo/repositoryimpl"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/notification"
	notificationrepo "github.com/kazz187/taskboard/internal/notification/repositoryimpl"
	projectrepo "github.com/kazz187/taskboard/internal/project/repositoryimpl"
	"github.com/kazz187/taskboard/internal/task"
	taskrepo "github.com/kazz187/taskboard/internal/task/repositoryimpl"
	userrepo "github.com/kazz187/taskboard/internal/user/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/clog"
)

var (
	app      = kingpin.New("taskboard", "Administration tool for the taskboard server")
	logLevel = app.Flag("log-level", "Log level").Default("info").Enum("debug", "info", "warn", "error")

	migrateCmd = app.Command("migrate", "Create or update the database schema")

	purgeDemoCmd = app.Command("purge-demo", "Delete every demo user and the data they own")

	importCmd       = app.Command("import", "Import tasks from a YAML or JSON file into a project")
	importProjectID = importCmd.Arg("project-id", "Project ID").Required().String()
	importFile      = importCmd.Arg("file", "Task file").Required().ExistingFile()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	var level slog.Level
	_ = level.UnmarshalText([]byte(*logLevel))
	slog.SetDefault(slog.New(clog.NewHandler(os.Stderr, "local", level)))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := run(ctx, command, level); err != nil {
		slog.Error("command failed", "command", command, clog.ErrorAttributeKey, err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, level slog.Level) error {
	env, err := config.LoadDatabaseEnv()
	if err != nil {
		return err
	}
	db, err := database.Open(env, level)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("failed to close database", clog.ErrorAttributeKey, err)
		}
	}()

	switch command {
	case migrateCmd.FullCommand():
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		slog.Info("database migrated", "driver", env.Driver)
		return nil
	case purgeDemoCmd.FullCommand():
		purger := demo.NewPurger(userrepo.NewGormRepository(db), demorepo.NewGormRepository(db))
		n, err := purger.PurgeOnce(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("purged %d demo users\n", n)
		return nil
	case importCmd.FullCommand():
		return runImport(ctx, db, *importProjectID, *importFile)
	}
	return fmt.Errorf("unknown command %q", command)
}

func runImport(ctx context.Context, db *gorm.DB, projectID, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	inputs, err := task.ParseImportFile(data)
	if err != nil {
		return err
	}

	bus := eventbus.New()
	tasks := taskrepo.NewGormRepository(db)
	activity.NewServer(activityrepo.NewGormRepository(db), tasks, nil).Subscribe(bus)
	notification.NewServer(notificationrepo.NewGormRepository(db), nil).Subscribe(bus)
	server := task.NewServer(tasks, projectrepo.NewGormRepository(db), bus, nil, nil)

	res, err := server.Import(ctx, projectID, inputs)
	bus.Wait()
	if err != nil {
		return err
	}
	fmt.Printf("imported %d tasks into %s (%s)\n", res.Results.Successful, res.Project.Name, res.Project.ID)
	return nil
}
