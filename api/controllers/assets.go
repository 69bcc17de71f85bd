package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phantomos-app/phantomos-backend/api/responses"
	"github.com/phantomos-app/phantomos-backend/api/validators"
	"github.com/phantomos-app/phantomos-backend/internal/assets"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	pkgerrors "github.com/phantomos-app/phantomos-backend/pkg/errors"
	"github.com/phantomos-app/phantomos-backend/pkg/logger"
)

type createAssetPayload struct {
	GameIPID    *uuid.UUID `json:"gameIpId"`
	GameIPName  *string    `json:"gameIpName"`
	Name        string     `json:"name" validate:"required,max=255"`
	AssetType   string     `json:"assetType" validate:"required"`
	Description *string    `json:"description"`
	ImageURL    *string    `json:"imageUrl"`
}

type updateAssetPayload struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	AssetType   *string `json:"assetType"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
}

// ListGameIPs returns the publisher's Game IPs with asset counts.
func ListGameIPs(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ips, err := svc.ListGameIPs(ctx, identity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"gameIps": ips})
	}
}

// ListAssets returns a filtered page of the publisher's IP assets.
func ListAssets(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := assets.ListAssetsInput{
			Search: validators.SanitizeString(r.URL.Query().Get("q"), 255),
			Limit:  limit,
			Cursor: validators.ParseQueryString(r, "cursor"),
		}
		if raw := validators.ParseQueryString(r, "gameIpId"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "gameIpId must be a uuid"))
				return
			}
			input.GameIPID = &id
		}
		if raw := validators.ParseQueryString(r, "assetType"); raw != "" {
			assetType, err := enums.ParseAssetType(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid asset type"))
				return
			}
			input.AssetType = &assetType
		}

		result, err := svc.ListAssets(ctx, identity, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"assets":     result.Assets,
			"nextCursor": result.NextCursor,
		})
	}
}

// GetAsset returns one asset by id.
func GetAsset(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		assetID, err := validators.ParsePathUUID(chi.URLParam(r, "assetId"), "assetId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		asset, err := svc.GetAsset(ctx, identity, assetID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, asset)
	}
}

// CreateAsset registers a new IP asset, creating its Game IP on demand when
// only a name is supplied.
func CreateAsset(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload createAssetPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		assetType, err := enums.ParseAssetType(payload.AssetType)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid asset type"))
			return
		}

		asset, err := svc.CreateAsset(ctx, identity, assets.CreateAssetInput{
			GameIPID:    payload.GameIPID,
			GameIPName:  payload.GameIPName,
			Name:        payload.Name,
			AssetType:   assetType,
			Description: payload.Description,
			ImageURL:    payload.ImageURL,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"asset": asset, "gameIpId": asset.GameIPID})
	}
}

// UpdateAsset applies a partial update to an asset.
func UpdateAsset(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		assetID, err := validators.ParsePathUUID(chi.URLParam(r, "assetId"), "assetId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateAssetPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := assets.UpdateAssetInput{
			Name:        payload.Name,
			Description: payload.Description,
			ImageURL:    payload.ImageURL,
		}
		if payload.AssetType != nil {
			assetType, err := enums.ParseAssetType(*payload.AssetType)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid asset type"))
				return
			}
			input.AssetType = &assetType
		}

		asset, err := svc.UpdateAsset(ctx, identity, assetID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, asset)
	}
}

// DeleteAsset removes an asset. Products losing their last link fall back to
// unmapped.
func DeleteAsset(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		assetID, err := validators.ParsePathUUID(chi.URLParam(r, "assetId"), "assetId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeleteAsset(ctx, identity, assetID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"deleted": true})
	}
}
