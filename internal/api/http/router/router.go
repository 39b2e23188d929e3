package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/iequus/iequus_backend/config"
	"github.com/iequus/iequus_backend/internal/api/http/handler"
	"github.com/iequus/iequus_backend/internal/api/http/middleware"
	"github.com/iequus/iequus_backend/internal/service/appointment"
	"github.com/iequus/iequus_backend/internal/service/auth"
	"github.com/iequus/iequus_backend/internal/service/client"
	"github.com/iequus/iequus_backend/internal/service/health"
	"github.com/iequus/iequus_backend/internal/service/horse"
	"github.com/iequus/iequus_backend/internal/service/hospital"
	"github.com/iequus/iequus_backend/internal/service/measure"
	"github.com/iequus/iequus_backend/internal/service/veterinarian"
	"github.com/iequus/iequus_backend/internal/service/xray"
	"github.com/iequus/iequus_backend/pkg/authorize"
	"github.com/iequus/iequus_backend/pkg/media"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg             *config.Config
	Store           media.Store
	AuthSvc         auth.Service
	VeterinarianSvc veterinarian.Service
	HospitalSvc     hospital.Service
	HorseSvc        horse.Service
	ClientSvc       client.Service
	AppointmentSvc  appointment.Service
	MeasureSvc      measure.Service
	XRaySvc         xray.Service
	HealthSvc       health.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Middlewares
	authRequired := middleware.AuthRequired(r.p.AuthSvc)

	// 3. Handlers
	authH := handler.NewAuthHandler(r.p.AuthSvc)
	vetH := handler.NewVeterinarianHandler(r.p.VeterinarianSvc, r.p.Store)
	hospitalH := handler.NewHospitalHandler(r.p.HospitalSvc, r.p.Store)
	horseH := handler.NewHorseHandler(r.p.HorseSvc, r.p.Store)
	clientH := handler.NewClientHandler(r.p.ClientSvc, r.p.Store)
	appointmentH := handler.NewAppointmentHandler(r.p.AppointmentSvc, r.p.Store)
	measureH := handler.NewMeasureHandler(r.p.MeasureSvc, r.p.Store)
	xrayH := handler.NewXRayHandler(r.p.XRaySvc)

	// 4. Resource routes
	registerAuthRoutes(app, authH, authRequired)
	registerVeterinarianRoutes(app, vetH, authRequired)
	registerHospitalRoutes(app, hospitalH, authRequired)
	registerHorseRoutes(app, horseH, authRequired)
	registerClientRoutes(app, clientH, authRequired)
	registerAppointmentRoutes(app, appointmentH, authRequired)
	registerMeasureRoutes(app, measureH, authRequired)

	app.Post("/xray", authRequired, xrayH.Analyze)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	healthH := handler.NewHealthHandler(r.p.HealthSvc)
	app.Get("/health", healthH.Check)

	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return authorize.IsPolicyHealthy() },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
