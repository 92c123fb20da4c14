package controllers

import (
	"net/http"
	"time"

	"github.com/obadatech/tarkhees-backend/api/responses"
	"github.com/obadatech/tarkhees-backend/internal/dataset"
	"github.com/obadatech/tarkhees-backend/internal/query"
	"github.com/obadatech/tarkhees-backend/pkg/logger"
)

// clientView decorates a canonical record with its clock-derived fields.
type clientView struct {
	dataset.Client
	Status   dataset.Status `json:"status"`
	DaysLeft int            `json:"daysLeft"`
	Devices  int            `json:"devices"`
}

type clientListResponse struct {
	Total   int          `json:"total"`
	Clients []clientView `json:"clients"`
}

// ListClients runs the filter pipeline over the dataset and returns the
// surviving records with derived status fields attached.
func ListClients(repo datasetLoader, sorter *query.Sorter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := filtersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clients, err := repo.Load(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		now := time.Now().UTC()
		filtered := query.Apply(clients, filters, now, sorter)

		views := make([]clientView, len(filtered))
		for i, c := range filtered {
			views[i] = clientView{
				Client:   c,
				Status:   c.Status(now),
				DaysLeft: c.DaysRemaining(now),
				Devices:  c.DeviceCount(),
			}
		}

		responses.WriteSuccess(w, clientListResponse{Total: len(views), Clients: views})
	}
}
