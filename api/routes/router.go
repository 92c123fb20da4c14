package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/obadatech/tarkhees-backend/api/controllers"
	"github.com/obadatech/tarkhees-backend/api/middleware"
	"github.com/obadatech/tarkhees-backend/internal/dataset"
	exportsvc "github.com/obadatech/tarkhees-backend/internal/export"
	"github.com/obadatech/tarkhees-backend/internal/query"
	"github.com/obadatech/tarkhees-backend/internal/stats"
	uploadsvc "github.com/obadatech/tarkhees-backend/internal/uploads"
	"github.com/obadatech/tarkhees-backend/pkg/config"
	"github.com/obadatech/tarkhees-backend/pkg/logger"
)

// Pinger is anything that can answer a readiness ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            Pinger
	Cache         Pinger
	Datasets      dataset.Repository
	UploadService uploadsvc.Service
	UploadRepo    *uploadsvc.Repository
	ExportService exportsvc.Service
	Sorter        *query.Sorter
}

// NewRouter assembles the full HTTP surface.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	windows := stats.Windows{
		Urgent: cfg.Ingest.UrgentWindow(),
		Soon:   cfg.Ingest.SoonWindow(),
	}
	maxUploadBytes := int64(cfg.Ingest.MaxUploadMB) << 20

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(deps.DB, deps.Cache, logg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/uploads", controllers.UploadWorkbook(deps.UploadService, logg, maxUploadBytes))
		r.Get("/uploads", controllers.ListUploads(deps.UploadRepo, logg))
		r.Get("/dashboard", controllers.Dashboard(deps.Datasets, windows, logg))
		r.Get("/clients", controllers.ListClients(deps.Datasets, deps.Sorter, logg))
		r.Get("/products", controllers.ListProducts(deps.Datasets, deps.Sorter, logg))
		r.Post("/exports", controllers.ExportWorkbook(deps.ExportService, logg))
		r.Delete("/dataset", controllers.ClearDataset(deps.Datasets, logg))
	})

	return r
}
