package controllers

import (
	"net/http"

	"github.com/obadatech/tarkhees-backend/api/responses"
	"github.com/obadatech/tarkhees-backend/internal/dataset"
	pkgerrors "github.com/obadatech/tarkhees-backend/pkg/errors"
	"github.com/obadatech/tarkhees-backend/pkg/logger"
)

// ClearDataset drops the dataset slot. The next dashboard load sees an
// empty state until a new workbook is uploaded.
func ClearDataset(repo dataset.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dataset repository unavailable"))
			return
		}

		if err := repo.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(r.Context(), "dataset.cleared")
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}
