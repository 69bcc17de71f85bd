package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/phantomos-app/phantomos-backend/api/responses"
	"github.com/phantomos-app/phantomos-backend/api/validators"
	"github.com/phantomos-app/phantomos-backend/internal/audit"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	pkgerrors "github.com/phantomos-app/phantomos-backend/pkg/errors"
	"github.com/phantomos-app/phantomos-backend/pkg/logger"
	"github.com/phantomos-app/phantomos-backend/pkg/pagination"
)

// ListAuditLog returns the publisher's audit trail, newest first.
func ListAuditLog(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
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

		var filter audit.ListFilter
		if raw := validators.ParseQueryString(r, "action"); raw != "" {
			action, err := enums.ParseAuditAction(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action"))
				return
			}
			filter.Action = &action
		}
		if raw := validators.ParseQueryString(r, "resourceType"); raw != "" {
			filter.ResourceType = &raw
		}
		if raw := validators.ParseQueryString(r, "actorId"); raw != "" {
			actorID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "actorId must be a uuid"))
				return
			}
			filter.ActorID = &actorID
		}

		entries, nextCursor, err := svc.List(ctx, identity.PublisherID, filter, pagination.Params{
			Limit:  limit,
			Cursor: validators.ParseQueryString(r, "cursor"),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"entries":    entries,
			"nextCursor": nextCursor,
		})
	}
}
