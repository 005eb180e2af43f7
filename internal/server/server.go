package server

import (
	"net/http"
	"strings"

	"github.com/Varun5711/taskapi/internal/analytics"
	"github.com/Varun5711/taskapi/internal/handlers"
	"github.com/Varun5711/taskapi/internal/idgen"
	"github.com/Varun5711/taskapi/internal/logger"
	"github.com/Varun5711/taskapi/internal/middleware"
	"github.com/Varun5711/taskapi/internal/service"
)

type Deps struct {
	APIPrefix   string
	Environment string
	Users       *service.UserService
	Tasks       *service.TaskService
	Analytics   *analytics.Service
	Limiter     middleware.Limiter
	RequestIDs  *idgen.Generator
	Redis       handlers.Pinger
	Log         *logger.Logger
}

// New builds the HTTP surface. Rate limiting applies to the API prefix only;
// /health and unknown paths outside the prefix are never limited.
func New(d Deps) http.Handler {
	prefix := "/" + strings.Trim(d.APIPrefix, "/")
	log := d.Log

	authMw := middleware.NewAuthMiddleware(d.Users, log.Named("auth-middleware"))
	authHandler := handlers.NewAuthHandler(d.Users, log.Named("auth-handler"))
	taskHandler := handlers.NewTaskHandler(d.Tasks, log.Named("task-handler"))
	analyticsHandler := handlers.NewAnalyticsHandler(d.Analytics, log.Named("analytics-handler"))
	healthHandler := handlers.NewHealthHandler(d.Environment)
	if d.Redis != nil {
		healthHandler.WithRedis(d.Redis)
	}

	api := http.NewServeMux()
	api.HandleFunc("POST "+prefix+"/auth/register", authHandler.Register)
	api.HandleFunc("POST "+prefix+"/auth/login", authHandler.Login)
	api.HandleFunc("GET "+prefix+"/auth/profile", authMw.RequireAuth(authHandler.GetProfile))

	api.HandleFunc("POST "+prefix+"/tasks", authMw.RequireAuth(taskHandler.Create))
	api.HandleFunc("GET "+prefix+"/tasks", authMw.RequireAuth(taskHandler.List))
	api.HandleFunc("GET "+prefix+"/tasks/{id}", authMw.RequireAuth(taskHandler.Get))
	api.HandleFunc("PUT "+prefix+"/tasks/{id}", authMw.RequireAuth(taskHandler.Update))
	api.HandleFunc("DELETE "+prefix+"/tasks/{id}", authMw.RequireAuth(taskHandler.Delete))
	api.HandleFunc("POST "+prefix+"/tasks/{id}/assign", authMw.RequireAuth(taskHandler.Assign))

	api.HandleFunc("GET "+prefix+"/analytics/statistics", authMw.RequireAuth(analyticsHandler.Statistics))
	api.HandleFunc("GET "+prefix+"/analytics/trends", authMw.RequireAuth(analyticsHandler.Trends))

	api.HandleFunc("/", handlers.NotFound)

	var apiHandler http.Handler = api
	if d.Limiter != nil {
		apiHandler = middleware.RateLimit(d.Limiter, log.Named("ratelimit"))(api)
	}

	root := http.NewServeMux()
	root.Handle(prefix+"/", apiHandler)
	root.HandleFunc(prefix, handlers.NotFound)
	root.HandleFunc("GET /health", healthHandler.Health)
	root.HandleFunc("/", handlers.NotFound)

	return middleware.Chain(root,
		middleware.RequestID(d.RequestIDs),
		middleware.AccessLog(log.Named("http")),
		middleware.Recover(log.Named("recovery")),
		middleware.SecurityHeaders,
		middleware.CORS,
	)
}
