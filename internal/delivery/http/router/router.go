package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/bookmeta/internal/delivery/http/handler"
	"github.com/user/bookmeta/internal/delivery/http/middleware"
	"github.com/user/bookmeta/pkg/metrics"
)

func New(h *handler.Handler, logger *zap.Logger, m *metrics.Metrics, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(120 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Post("/extract", h.HandleExtract)
		r.Get("/record", h.HandleGetRecord)
		r.Delete("/record", h.HandleClearRecord)
		r.Get("/record/form", h.HandleRecordForm)
		r.Post("/record/inject", h.HandleInject)
	})

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}
