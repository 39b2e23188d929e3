// Package health reports on the backing services the API depends on.
package health

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	StatusOK          = "ok"
	StatusError       = "error"
	StatusUnavailable = "unavailable"
	StatusHealthy     = "healthy"
	StatusUnhealthy   = "unhealthy"
)

// Report is the /health body. Database and prediction service decide the
// overall status; redis is informational.
type Report struct {
	Database       string `json:"database"`
	PredictService string `json:"predict_service"`
	Redis          string `json:"redis"`
	OverallStatus  string `json:"overall_status"`
}

func (r Report) Healthy() bool {
	return r.OverallStatus == StatusHealthy
}

// Probe checks one dependency.
type Probe func(ctx context.Context) error

type Probes struct {
	Database Probe
	Predict  Probe
	Redis    Probe
}

type Service interface {
	Check(ctx context.Context) Report
}

type healthService struct {
	probes  Probes
	timeout time.Duration
	logger  *slog.Logger
}

func New(p Probes, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &healthService{probes: p, timeout: 5 * time.Second, logger: logger}
}

func (s *healthService) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	r := Report{OverallStatus: StatusUnhealthy}

	var g errgroup.Group
	g.Go(func() error { r.Database = s.run(ctx, "database", s.probes.Database); return nil })
	g.Go(func() error { r.PredictService = s.run(ctx, "predict_service", s.probes.Predict); return nil })
	g.Go(func() error { r.Redis = s.run(ctx, "redis", s.probes.Redis); return nil })
	_ = g.Wait()

	if r.Database == StatusOK && r.PredictService == StatusOK {
		r.OverallStatus = StatusHealthy
	}
	return r
}

func (s *healthService) run(ctx context.Context, name string, p Probe) string {
	if p == nil {
		return StatusUnavailable
	}
	if err := p(ctx); err != nil {
		s.logger.ErrorContext(ctx, "health check failed", "dependency", name, "error", err)
		return StatusError
	}
	return StatusOK
}
