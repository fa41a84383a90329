package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/api/handler"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/api/middleware"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/ports"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/infrastructure/http/handlers"
)

// Dependencies are the wired services the router exposes.
type Dependencies struct {
	Log      zerolog.Logger
	Verifier ports.IdentityVerifier
	Identity ports.IdentityService

	Institutions ports.CrudService[domain.Institution]
	Courses      ports.CrudService[domain.Course]
	Students     ports.CrudService[domain.Student]
	Subjects     ports.CrudService[domain.Subject]
	Grades       ports.CrudService[domain.Grade]
	Reports      ports.ReportService

	Dispatcher    handler.EventDispatcher
	WebhookSecret string
	HealthChecks  map[string]handlers.Check
}

// crudRoutes is implemented by every handler.CrudHandler instantiation.
type crudRoutes interface {
	List(c echo.Context) error
	Get(c echo.Context) error
	Create(c echo.Context) error
	Update(c echo.Context) error
	Delete(c echo.Context) error
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddleware("school"))

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.HealthChecks)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/api/v1")

	// --- Webhooks (signature verified, no bearer) ---
	webhookHandler := handler.NewWebhookHandler(deps.WebhookSecret, deps.Dispatcher, deps.Log)
	v1.POST("/webhooks/identity", webhookHandler.Receive)

	// --- Authenticated routes ---
	authed := v1.Group("", middleware.Auth(deps.Verifier))
	can := func(cp domain.Capability) echo.MiddlewareFunc {
		return middleware.RequireCapability(deps.Identity, cp)
	}

	authHandler := handler.NewAuthHandler(deps.Identity)
	authed.GET("/auth/check-first-user", authHandler.CheckFirstUser)
	authed.POST("/auth/initialize-user", authHandler.InitializeUser)
	authed.POST("/auth/setup-first-admin", authHandler.SetupFirstAdmin)
	authed.GET("/auth/permissions", authHandler.Permissions)

	userHandler := handler.NewUserHandler(deps.Identity)
	authed.GET("/users", userHandler.List, can(domain.CanManage))
	authed.PUT("/users/:id/role", userHandler.UpdateRole, can(domain.CanManage))

	mountCrud(authed, "/institutions", handler.NewInstitutionHandler(deps.Institutions), can)
	mountCrud(authed, "/courses", handler.NewCourseHandler(deps.Courses), can)
	mountCrud(authed, "/students", handler.NewStudentHandler(deps.Students), can)
	mountCrud(authed, "/subjects", handler.NewSubjectHandler(deps.Subjects), can)
	mountCrud(authed, "/grades", handler.NewGradeHandler(deps.Grades), can)

	reportHandler := handler.NewReportHandler(deps.Reports)
	authed.GET("/dashboard/summary", reportHandler.Dashboard, can(domain.CanView))
	authed.GET("/reports/grades", reportHandler.GradeReport, can(domain.CanExport))

	return e
}

// mountCrud registers the five CRUD routes of one entity with its
// capability gates: reads need view, writes need manage, deletes need delete.
func mountCrud(g *echo.Group, prefix string, h crudRoutes, can func(domain.Capability) echo.MiddlewareFunc) {
	g.GET(prefix, h.List, can(domain.CanView))
	g.GET(prefix+"/:id", h.Get, can(domain.CanView))
	g.POST(prefix, h.Create, can(domain.CanManage))
	g.PUT(prefix+"/:id", h.Update, can(domain.CanManage))
	g.DELETE(prefix+"/:id", h.Delete, can(domain.CanDelete))
}

// requestLogger writes one structured access log line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
