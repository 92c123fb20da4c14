package controllers

import (
	"net/http"
	"sort"

	"github.com/obadatech/tarkhees-backend/api/responses"
	"github.com/obadatech/tarkhees-backend/internal/query"
	"github.com/obadatech/tarkhees-backend/pkg/logger"
)

// ListProducts returns the distinct product names present in the dataset,
// collated for display in the filter dropdown.
func ListProducts(repo datasetLoader, sorter *query.Sorter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clients, err := repo.Load(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		seen := map[string]struct{}{}
		products := []string{}
		for _, c := range clients {
			if c.Product == "" {
				continue
			}
			if _, dup := seen[c.Product]; dup {
				continue
			}
			seen[c.Product] = struct{}{}
			products = append(products, c.Product)
		}

		sort.SliceStable(products, func(i, j int) bool {
			return sorter.Compare(products[i], products[j]) < 0
		})

		responses.WriteSuccess(w, map[string]any{"products": products})
	}
}
