package internal

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"connectrpc.com/connect"
	"connectrpc.com/grpchealth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kazz187/taskboard/internal/activity"
	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/event"
	"github.com/kazz187/taskboard/internal/label"
	"github.com/kazz187/taskboard/internal/notification"
	"github.com/kazz187/taskboard/internal/project"
	"github.com/kazz187/taskboard/internal/pushnotification"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/workspace"
	"github.com/kazz187/taskboard/internal/workspaceuser"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/clog"
)

type Server struct {
	server                 *http.Server
	env                    *config.Env
	authMiddleware         *auth.Middleware
	authServer             *auth.Server
	workspaceServer        *workspace.Server
	workspaceUserServer    *workspaceuser.Server
	projectServer          *project.Server
	taskServer             *task.Server
	activityServer         *activity.Server
	labelServer            *label.Server
	notificationServer     *notification.Server
	pushNotificationServer *pushnotification.Server
	eventServer            *event.Server
}

func NewServer(
	env *config.Env,
	authMiddleware *auth.Middleware,
	authServer *auth.Server,
	workspaceServer *workspace.Server,
	workspaceUserServer *workspaceuser.Server,
	projectServer *project.Server,
	taskServer *task.Server,
	activityServer *activity.Server,
	labelServer *label.Server,
	notificationServer *notification.Server,
	pushNotificationServer *pushnotification.Server,
	eventServer *event.Server,
) *Server {
	return &Server{
		env:                    env,
		authMiddleware:         authMiddleware,
		authServer:             authServer,
		workspaceServer:        workspaceServer,
		workspaceUserServer:    workspaceUserServer,
		projectServer:          projectServer,
		taskServer:             taskServer,
		activityServer:         activityServer,
		labelServer:            labelServer,
		notificationServer:     notificationServer,
		pushNotificationServer: pushNotificationServer,
		eventServer:            eventServer,
	}
}

// Handler builds the full HTTP handler: REST routes, health endpoints and
// CORS, ready to be wrapped in h2c.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		clog.SlogChiMiddleware(clog.WithChiFilter(clog.DefaultChiHealthCheckFilter)),
		cerr.NewConvertConnectErrorChiMiddleware(),
		s.authMiddleware.Authenticate,
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
	})

	// Public.
	s.authServer.RegisterRoutes(r)
	s.taskServer.RegisterPublicRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		s.authServer.RegisterUserRoutes(r)
		s.workspaceServer.RegisterRoutes(r)
		s.workspaceUserServer.RegisterRoutes(r)
		s.projectServer.RegisterRoutes(r)
		s.taskServer.RegisterRoutes(r)
		s.activityServer.RegisterRoutes(r)
		s.labelServer.RegisterRoutes(r)
		s.notificationServer.RegisterRoutes(r)
		s.pushNotificationServer.RegisterRoutes(r)
		s.eventServer.RegisterRoutes(r)
	})

	mux := http.NewServeMux()
	mux.Handle("/health", &HealthChecker{})
	mux.Handle(grpchealth.NewHandler(
		grpchealth.NewStaticChecker(),
		connect.WithInterceptors(s.interceptors()...),
	))
	mux.Handle("/", r)

	return s.cors().Handler(mux)
}

// ListenAndServe starts the HTTP server. The provided context is used as the
// base context for all incoming requests, so cancelling it also ends open
// event streams.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.env.HTTPHost, s.env.HTTPPort)
	slog.Info("starting server", "addr", addr)

	s.server = &http.Server{
		Addr:        addr,
		Handler:     h2c.NewHandler(s.Handler(), &http2.Server{}),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type HealthChecker struct{}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) interceptors() []connect.Interceptor {
	return []connect.Interceptor{
		clog.NewSlogConnectInterceptor(),
		cerr.NewConvertConnectErrorInterceptor(),
	}
}

func (s *Server) cors() *cors.Cors {
	opts := cors.Options{
		AllowedOrigins: s.env.Origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
	if len(opts.AllowedOrigins) == 0 {
		// Credentials rule out "*", so echo the caller's origin instead.
		opts.AllowOriginFunc = func(string) bool { return true }
	}
	return cors.New(opts)
}
