package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/phantomos-app/phantomos-backend/api/responses"
	"github.com/phantomos-app/phantomos-backend/api/validators"
	"github.com/phantomos-app/phantomos-backend/internal/tagging"
	"github.com/phantomos-app/phantomos-backend/pkg/logger"
)

type suggestPayload struct {
	ProductID uuid.UUID   `json:"productId" validate:"required"`
	AssetIDs  []uuid.UUID `json:"assetIds"`
}

type suggestBatchPayload struct {
	Items []suggestPayload `json:"items" validate:"required,min=1,max=50,dive"`
}

type autoTagPayload struct {
	ProductIDs []uuid.UUID `json:"productIds"`
	Limit      int         `json:"limit" validate:"omitempty,min=1,max=200"`
}

// SuggestTags asks the model for scored asset suggestions for one product.
func SuggestTags(svc tagging.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload suggestPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Suggest(ctx, identity, tagging.SuggestInput{
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

// SuggestTagsBatch runs suggestion for several products in grouped model
// calls.
func SuggestTagsBatch(svc tagging.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload suggestBatchPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items := make([]tagging.SuggestInput, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, tagging.SuggestInput{
				ProductID: item.ProductID,
				AssetIDs:  item.AssetIDs,
			})
		}

		results, err := svc.SuggestBatch(ctx, identity, items)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"results": results})
	}
}

// AutoTagProducts suggests and eagerly links assets for unmapped products.
func AutoTagProducts(svc tagging.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload autoTagPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.AutoTag(ctx, identity, tagging.AutoTagInput{
			ProductIDs: payload.ProductIDs,
			Limit:      payload.Limit,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
