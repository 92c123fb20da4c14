package controllers

import (
	"io"
	"net/http"

	"github.com/obadatech/tarkhees-backend/api/responses"
	"github.com/obadatech/tarkhees-backend/api/validators"
	uploadsvc "github.com/obadatech/tarkhees-backend/internal/uploads"
	pkgerrors "github.com/obadatech/tarkhees-backend/pkg/errors"
	"github.com/obadatech/tarkhees-backend/pkg/logger"
)

// UploadWorkbook ingests one multipart spreadsheet under the "file" field
// and replaces the dataset with the reconciled result.
func UploadWorkbook(svc uploadsvc.Service, logg *logger.Logger, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upload service unavailable"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeTooLarge, err, "upload exceeds size limit"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "missing file field"))
			return
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read upload"))
			return
		}

		result, err := svc.Ingest(r.Context(), uploadsvc.IngestInput{
			Filename: header.Filename,
			Content:  content,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithUploadID(r.Context(), result.UploadID.String())
			logg.Info(ctx, "upload.ingested")
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ListUploads returns the most recent upload audit rows.
func ListUploads(repo *uploadsvc.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upload repository unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := repo.List(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list uploads"))
			return
		}

		responses.WriteSuccess(w, rows)
	}
}
