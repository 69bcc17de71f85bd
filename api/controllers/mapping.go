package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phantomos-app/phantomos-backend/api/responses"
	"github.com/phantomos-app/phantomos-backend/api/validators"
	"github.com/phantomos-app/phantomos-backend/internal/mapping"
	"github.com/phantomos-app/phantomos-backend/pkg/logger"
)

type confirmMappingPayload struct {
	ProductID uuid.UUID   `json:"productId" validate:"required"`
	AssetIDs  []uuid.UUID `json:"assetIds" validate:"required,min=1"`
}

type skipMappingPayload struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
}

type bulkConfirmPayload struct {
	Items []confirmMappingPayload `json:"items" validate:"required,min=1,max=100,dive"`
}

type bulkSkipPayload struct {
	ProductIDs []uuid.UUID `json:"productIds" validate:"required,min=1,max=100"`
}

type addLinksPayload struct {
	AssetIDs []uuid.UUID `json:"assetIds" validate:"required,min=1"`
}

// ConfirmMapping replaces a product's links with the given asset set.
func ConfirmMapping(svc mapping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload confirmMappingPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Confirm(ctx, identity, mapping.ConfirmInput{
			ProductID: payload.ProductID,
			AssetIDs:  payload.AssetIDs,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// SkipMapping marks a product as reviewed-without-mapping.
func SkipMapping(svc mapping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload skipMappingPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Skip(ctx, identity, payload.ProductID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// BulkConfirmMapping confirms many products with per-item error isolation.
// The response is 200 even when some items fail.
func BulkConfirmMapping(svc mapping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload bulkConfirmPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items := make([]mapping.ConfirmInput, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, mapping.ConfirmInput{
				ProductID: item.ProductID,
				AssetIDs:  item.AssetIDs,
			})
		}

		result, err := svc.BulkConfirm(ctx, identity, items)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// BulkSkipMapping skips many products in one statement.
func BulkSkipMapping(svc mapping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload bulkSkipPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		affected, err := svc.BulkSkip(ctx, identity, payload.ProductIDs)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"skipped": affected})
	}
}

// AddProductLinks appends asset links to a product without replacing the
// existing set.
func AddProductLinks(svc mapping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload addLinksPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		added, err := svc.AddLinks(ctx, identity, productID, payload.AssetIDs)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"added": added})
	}
}

// UnlinkProductAsset removes one product→asset link. The asset id rides in
// the query string so the route stays collection-shaped.
func UnlinkProductAsset(svc mapping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		assetID, err := validators.ParseQueryUUID(r, "assetId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Unlink(ctx, identity, productID, assetID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"unlinked": true})
	}
}
