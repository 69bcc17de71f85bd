package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phantomos-app/phantomos-backend/api/responses"
	"github.com/phantomos-app/phantomos-backend/api/validators"
	"github.com/phantomos-app/phantomos-backend/internal/connectors"
	"github.com/phantomos-app/phantomos-backend/pkg/logger"
)

type connectShopifyPayload struct {
	ShopDomain string `json:"shopDomain" validate:"required,max=255"`
}

// ListConnectors returns the publisher's connectors without credentials.
func ListConnectors(svc connectors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.List(ctx, identity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"connectors": list})
	}
}

// ConnectShopify creates a pending connector and returns the OAuth
// authorize URL.
func ConnectShopify(svc connectors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload connectShopifyPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Connect(ctx, identity, connectors.ConnectInput{
			ShopDomain: payload.ShopDomain,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ShopifyCallback completes the OAuth handshake. The route is public; trust
// comes from the HMAC signature and the pending connector row.
func ShopifyCallback(svc connectors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := svc.CompleteCallback(ctx, r.URL.Query()); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"connected": true})
	}
}

// SyncConnector pulls products and orders from the provider.
func SyncConnector(svc connectors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		connectorID, err := validators.ParsePathUUID(chi.URLParam(r, "connectorId"), "connectorId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Sync(ctx, identity, connectorID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// DisconnectConnector removes a connector and its synced products.
func DisconnectConnector(svc connectors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		connectorID, err := validators.ParsePathUUID(chi.URLParam(r, "connectorId"), "connectorId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Disconnect(ctx, identity, connectorID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"disconnected": true})
	}
}
