package controllers

import (
	"net/http"
	"time"

	"github.com/obadatech/tarkhees-backend/api/responses"
	"github.com/obadatech/tarkhees-backend/api/validators"
	exportsvc "github.com/obadatech/tarkhees-backend/internal/export"
	"github.com/obadatech/tarkhees-backend/internal/query"
	pkgerrors "github.com/obadatech/tarkhees-backend/pkg/errors"
	"github.com/obadatech/tarkhees-backend/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type exportRequest struct {
	Statuses           []string `json:"statuses" validate:"omitempty,dive,oneof=active expiring_soon expired"`
	ExcludeDuplicates  bool     `json:"excludeDuplicates"`
	ExcludeHighValue   bool     `json:"excludeHighValue"`
	ExcludeLowActivity bool     `json:"excludeLowActivity"`
	Search             string   `json:"search" validate:"omitempty,max=200"`
	Products           []string `json:"products" validate:"omitempty,dive,min=1"`
	ExpiryFrom         string   `json:"expiryFrom" validate:"omitempty,datetime=2006-01-02"`
	ExpiryTo           string   `json:"expiryTo" validate:"omitempty,datetime=2006-01-02"`
	MinActivations     int      `json:"minActivations" validate:"omitempty,min=0"`
	MaxActivations     int      `json:"maxActivations" validate:"omitempty,min=0"`
	MinDevices         int      `json:"minDevices" validate:"omitempty,min=0"`
	MaxDevices         int      `json:"maxDevices" validate:"omitempty,min=0"`
	ExpiringInDays     int      `json:"expiringInDays" validate:"omitempty,min=0,max=3650"`
	NamePattern        string   `json:"namePattern" validate:"omitempty,max=200"`
	KeyPattern         string   `json:"keyPattern" validate:"omitempty,max=200"`
	SortBy             string   `json:"sortBy" validate:"omitempty,oneof=expiryDate clientName product licenseKey activations status daysLeft"`
	SortDir            string   `json:"sortDir" validate:"omitempty,oneof=asc desc"`
}

func (req exportRequest) toFilters() (query.Filters, error) {
	var f query.Filters

	for _, status := range req.Statuses {
		switch status {
		case "active":
			f.ActiveOnly = true
		case "expiring_soon":
			f.ExpiringSoonOnly = true
		case "expired":
			f.ExpiredOnly = true
		}
	}

	f.ExcludeDuplicates = req.ExcludeDuplicates
	f.ExcludeHighValue = req.ExcludeHighValue
	f.ExcludeLowActivity = req.ExcludeLowActivity
	f.Search = req.Search
	f.Products = req.Products
	f.MinActivations = req.MinActivations
	f.MaxActivations = req.MaxActivations
	f.MinDevices = req.MinDevices
	f.MaxDevices = req.MaxDevices
	f.ExpiringInDays = req.ExpiringInDays
	f.NamePattern = req.NamePattern
	f.KeyPattern = req.KeyPattern

	if req.ExpiryFrom != "" {
		from, err := time.Parse("2006-01-02", req.ExpiryFrom)
		if err != nil {
			return f, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid expiryFrom")
		}
		f.ExpiryFrom = from
	}
	if req.ExpiryTo != "" {
		to, err := time.Parse("2006-01-02", req.ExpiryTo)
		if err != nil {
			return f, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid expiryTo")
		}
		f.ExpiryTo = to
	}

	var err error
	f.Sort, err = parseSort(req.SortBy, req.SortDir)
	return f, err
}

// ExportWorkbook renders the filtered dataset as an xlsx attachment. The
// same filter pipeline as the list endpoint runs server-side, so the file
// matches what the dashboard shows.
func ExportWorkbook(svc exportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "export service unavailable"))
			return
		}

		var payload exportRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := payload.toFilters()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		file, err := svc.Export(r.Context(), filters, time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteFile(w, file.Name, xlsxContentType, file.Content)
	}
}
