package controllers

import (
	"net/http"
	"strings"

	"github.com/obadatech/tarkhees-backend/api/validators"
	"github.com/obadatech/tarkhees-backend/internal/query"
	pkgerrors "github.com/obadatech/tarkhees-backend/pkg/errors"
)

var sortFields = map[string]query.SortField{
	"expiryDate":  query.SortByExpiry,
	"clientName":  query.SortByClientName,
	"product":     query.SortByProduct,
	"licenseKey":  query.SortByLicenseKey,
	"activations": query.SortByActivations,
	"status":      query.SortByStatus,
	"daysLeft":    query.SortByDaysLeft,
}

// filtersFromQuery maps the dashboard's query string onto the filter
// pipeline. Every knob is optional.
func filtersFromQuery(r *http.Request) (query.Filters, error) {
	var f query.Filters

	for _, status := range validators.ParseQueryList(r, "status") {
		switch status {
		case "active":
			f.ActiveOnly = true
		case "expiring_soon":
			f.ExpiringSoonOnly = true
		case "expired":
			f.ExpiredOnly = true
		default:
			return f, pkgerrors.New(pkgerrors.CodeValidation, "unknown status value").
				WithDetails(map[string]any{"field": "status", "value": status})
		}
	}

	var err error
	if f.ExcludeDuplicates, err = validators.ParseQueryBool(r, "excludeDuplicates"); err != nil {
		return f, err
	}
	if f.ExcludeHighValue, err = validators.ParseQueryBool(r, "excludeHighValue"); err != nil {
		return f, err
	}
	if f.ExcludeLowActivity, err = validators.ParseQueryBool(r, "excludeLowActivity"); err != nil {
		return f, err
	}

	f.Search = r.URL.Query().Get("search")
	f.Products = validators.ParseQueryList(r, "products")
	f.NamePattern = r.URL.Query().Get("namePattern")
	f.KeyPattern = r.URL.Query().Get("keyPattern")

	if f.ExpiryFrom, err = validators.ParseQueryDate(r, "expiryFrom"); err != nil {
		return f, err
	}
	if f.ExpiryTo, err = validators.ParseQueryDate(r, "expiryTo"); err != nil {
		return f, err
	}

	if f.MinActivations, err = validators.ParseQueryInt(r, "minActivations", 0, 0, 999999); err != nil {
		return f, err
	}
	if f.MaxActivations, err = validators.ParseQueryInt(r, "maxActivations", 0, 0, 999999); err != nil {
		return f, err
	}
	if f.MinDevices, err = validators.ParseQueryInt(r, "minDevices", 0, 0, 999999); err != nil {
		return f, err
	}
	if f.MaxDevices, err = validators.ParseQueryInt(r, "maxDevices", 0, 0, 999999); err != nil {
		return f, err
	}
	if f.ExpiringInDays, err = validators.ParseQueryInt(r, "expiringInDays", 0, 0, 3650); err != nil {
		return f, err
	}

	f.Sort, err = parseSort(r.URL.Query().Get("sortBy"), r.URL.Query().Get("sortDir"))
	return f, err
}

func parseSort(field, dir string) (query.Sort, error) {
	var s query.Sort

	if field != "" {
		mapped, ok := sortFields[field]
		if !ok {
			return s, pkgerrors.New(pkgerrors.CodeValidation, "unknown sort field").
				WithDetails(map[string]any{"field": "sortBy", "value": field})
		}
		s.Field = mapped
	}

	switch strings.ToLower(dir) {
	case "", "asc":
	case "desc":
		s.Descending = true
	default:
		return s, pkgerrors.New(pkgerrors.CodeValidation, "sort direction must be asc or desc").
			WithDetails(map[string]any{"field": "sortDir", "value": dir})
	}
	return s, nil
}
