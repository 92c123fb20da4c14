package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/obadatech/tarkhees-backend/api/responses"
	"github.com/obadatech/tarkhees-backend/internal/dataset"
	"github.com/obadatech/tarkhees-backend/internal/stats"
	"github.com/obadatech/tarkhees-backend/pkg/logger"
)

type datasetLoader interface {
	Load(ctx context.Context) ([]dataset.Client, error)
}

type dashboardPayload struct {
	stats.Summary
	Duplicates []stats.DuplicateGroup `json:"duplicates"`
}

// Dashboard returns the aggregate block computed over the whole dataset.
// An empty slot yields zeroed aggregates rather than an error.
func Dashboard(repo datasetLoader, windows stats.Windows, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clients, err := repo.Load(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := dashboardPayload{
			Summary:    stats.Compute(clients, time.Now().UTC(), windows),
			Duplicates: stats.Duplicates(clients),
		}
		responses.WriteSuccess(w, payload)
	}
}
