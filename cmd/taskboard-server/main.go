package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kazz187/taskboard/internal/activity"
	activityrepo "github.com/kazz187/taskboard/internal/activity/repositoryimpl"
	"github.com/kazz187/taskboard/internal/auth"
	authrepo "github.com/kazz187/taskboard/internal/auth/repositoryimpl"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/database"
	"github.com/kazz187/taskboard/internal/demo"
	demorepo "github.com/kazz187/taskboard/internal/demo/repositoryimpl"
	"github.com/kazz187/taskboard/internal/event"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/label"
	labelrepo "github.com/kazz187/taskboard/internal/label/repositoryimpl"
	"github.com/kazz187/taskboard/internal/notification"
	notificationrepo "github.com/kazz187/taskboard/internal/notification/repositoryimpl"
	"github.com/kazz187/taskboard/internal/project"
	projectrepo "github.com/kazz187/taskboard/internal/project/repositoryimpl"
	"github.com/kazz187/taskboard/internal/pushnotification"
	pushsubrepo "github.com/kazz187/taskboard/internal/pushsubscription/repositoryimpl"
	"github.com/kazz187/taskboard/internal/task"
	taskrepo "github.com/kazz187/taskboard/internal/task/repositoryimpl"
	userrepo "github.com/kazz187/taskboard/internal/user/repositoryimpl"
	"github.com/kazz187/taskboard/internal/workspace"
	workspacerepo "github.com/kazz187/taskboard/internal/workspace/repositoryimpl"
	"github.com/kazz187/taskboard/internal/workspaceuser"
	workspaceuserrepo "github.com/kazz187/taskboard/internal/workspaceuser/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/clog"
	"github.com/kazz187/taskboard/pkg/storage"

	server "github.com/kazz187/taskboard/internal"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", clog.ErrorAttributeKey, err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	slog.SetDefault(slog.New(clog.NewHandler(os.Stderr, env.Env, level)))

	// Setup database
	db, err := database.Open(&env.DatabaseEnv, level)
	if err != nil {
		slog.Error("failed to open database", clog.ErrorAttributeKey, err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("failed to close database", clog.ErrorAttributeKey, err)
		}
	}()
	if err := database.Migrate(context.Background(), db); err != nil {
		slog.Error("failed to migrate database", clog.ErrorAttributeKey, err)
		os.Exit(1)
	}

	// Setup storage for export archives
	var store storage.Storage
	switch env.StorageEnv.Type {
	case "s3":
		store, err = storage.NewS3Storage(context.Background(), env.StorageEnv.S3Bucket, env.StorageEnv.S3Prefix, env.StorageEnv.S3Region)
		if err != nil {
			slog.Error("failed to create S3 storage", clog.ErrorAttributeKey, err)
			os.Exit(1)
		}
	default:
		store, err = storage.NewLocalStorage(env.StorageEnv.BaseDir)
		if err != nil {
			slog.Error("failed to create local storage", clog.ErrorAttributeKey, err)
			os.Exit(1)
		}
	}

	// Setup activation guard
	var guard workspaceuser.Guard
	if env.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: env.RedisAddr})
		defer client.Close()
		guard = workspaceuser.NewRedisGuard(client, env.CacheTTL)
	} else {
		guard = workspaceuser.NewMemoryGuard(env.CacheTTL)
	}

	// Setup event bus
	bus := eventbus.New()

	// Setup repositories
	userRepo := userrepo.NewGormRepository(db)
	sessionRepo := authrepo.NewGormSessionRepository(db)
	workspaceRepo := workspacerepo.NewGormRepository(db)
	workspaceUserRepo := workspaceuserrepo.NewGormRepository(db)
	projectRepo := projectrepo.NewGormRepository(db)
	taskRepo := taskrepo.NewGormRepository(db)
	activityRepo := activityrepo.NewGormRepository(db)
	labelRepo := labelrepo.NewGormRepository(db)
	notificationRepo := notificationrepo.NewGormRepository(db)
	pushSubRepo := pushsubrepo.NewGormRepository(db)

	// Setup push notification
	vapidEnv := config.VAPIDEnvFromEnv(env)
	pushSender := pushnotification.NewSender(vapidEnv, pushSubRepo)
	if !pushSender.Enabled() {
		slog.Warn("VAPID keys not configured, web push disabled")
	}

	// Setup servers
	activator := workspaceuser.NewActivator(workspaceUserRepo, guard)
	sessions := auth.NewSessionManager(config.AuthEnvFromEnv(env), sessionRepo)
	authServer := auth.NewServer(config.AuthEnvFromEnv(env), config.DemoEnvFromEnv(env), userRepo, sessions, bus, activator)
	authMiddleware := auth.NewMiddleware(sessions, userRepo, activator)
	workspaceServer := workspace.NewServer(workspaceRepo, bus)
	workspaceUserServer := workspaceuser.NewServer(workspaceUserRepo, workspaceRepo, userRepo, activator)
	projectServer := project.NewServer(projectRepo, workspaceRepo, workspaceUserServer)
	taskServer := task.NewServer(taskRepo, projectRepo, bus, store, projectServer)
	activityServer := activity.NewServer(activityRepo, taskRepo, taskServer)
	labelServer := label.NewServer(labelRepo, taskServer, workspaceUserServer)
	notificationServer := notification.NewServer(notificationRepo, pushSender)
	pushNotificationServer := pushnotification.NewServer(vapidEnv, pushSubRepo)
	eventServer := event.NewServer(bus, projectServer)

	// Setup subscribers
	workspaceUserServer.Subscribe(bus)
	activityServer.Subscribe(bus)
	notificationServer.Subscribe(bus)

	srv := server.NewServer(
		env,
		authMiddleware,
		authServer,
		workspaceServer,
		workspaceUserServer,
		projectServer,
		taskServer,
		activityServer,
		labelServer,
		notificationServer,
		pushNotificationServer,
		eventServer,
	)

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if env.DemoMode {
		purger := demo.NewPurger(userRepo, demorepo.NewGormRepository(db))
		go purger.Run(ctx)
	}

	go func() {
		if err := srv.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", clog.ErrorAttributeKey, err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", clog.ErrorAttributeKey, err)
	}
	// Side effects of requests already served finish before the database closes.
	bus.Wait()
	activator.Wait()
}
