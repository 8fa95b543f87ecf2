package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kazz187/taskboard/internal/activity"
	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/label"
	"github.com/kazz187/taskboard/internal/notification"
	"github.com/kazz187/taskboard/internal/project"
	"github.com/kazz187/taskboard/internal/pushsubscription"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/internal/workspace"
	"github.com/kazz187/taskboard/internal/workspaceuser"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Models lists every table the server owns, in creation order.
func Models() []any {
	return []any{
		&user.User{},
		&user.Account{},
		&auth.Session{},
		&workspace.Workspace{},
		&workspaceuser.WorkspaceUser{},
		&project.Project{},
		&task.Task{},
		&activity.Activity{},
		&label.Label{},
		&notification.Notification{},
		&pushsubscription.Subscription{},
	}
}

func Open(env *config.DatabaseEnv, level slog.Level) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch env.Driver {
	case DriverSQLite:
		dialector = sqlite.Open(env.DSN)
	case DriverPostgres:
		dialector = postgres.Open(env.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", env.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", env.Driver, err)
	}
	if env.Driver == DriverSQLite {
		// sqlite serialises writers; one connection avoids SQLITE_BUSY under concurrent handlers.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}

type slogWriter struct{}

func (slogWriter) Printf(format string, args ...any) {
	slog.Info(fmt.Sprintf(format, args...), "component", "gorm")
}

func newLogger(level slog.Level) logger.Interface {
	logLevel := logger.Warn
	if level <= slog.LevelDebug {
		logLevel = logger.Info
	}
	return logger.New(slogWriter{}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logLevel,
		IgnoreRecordNotFoundError: true,
	})
}
