package controllers

import (
	"net/http"

	"github.com/phantomos-app/phantomos-backend/api/responses"
	"github.com/phantomos-app/phantomos-backend/internal/importer"
	pkgerrors "github.com/phantomos-app/phantomos-backend/pkg/errors"
	"github.com/phantomos-app/phantomos-backend/pkg/logger"
)

// 10 MB upload ceiling for CSV imports.
const maxImportBytes = 10 << 20

// ImportProductsCSV ingests a multipart CSV upload under the "file" field.
func ImportProductsCSV(svc importer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
		if err := r.ParseMultipartForm(maxImportBytes); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart upload"))
			return
		}

		file, _, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "csv file field is required"))
			return
		}
		defer file.Close()

		result, err := svc.ImportCSV(ctx, identity, file)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
