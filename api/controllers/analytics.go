package controllers

import (
	"net/http"
	"time"

	"github.com/phantomos-app/phantomos-backend/api/responses"
	"github.com/phantomos-app/phantomos-backend/api/validators"
	"github.com/phantomos-app/phantomos-backend/internal/analytics"
	pkgerrors "github.com/phantomos-app/phantomos-backend/pkg/errors"
	"github.com/phantomos-app/phantomos-backend/pkg/logger"
)

// AssetPerformance returns revenue/units/score per asset, best first.
func AssetPerformance(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.AssetPerformance(ctx, identity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"assets": rows})
	}
}

// CategoryPerformance returns revenue/units per product category.
func CategoryPerformance(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.CategoryPerformance(ctx, identity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"categories": rows})
	}
}

// RevenueTimeseries returns bucketed revenue over a window. Interval defaults
// to day, the window to the trailing 90 days.
func RevenueTimeseries(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, err := identityFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		from, err := validators.ParseQueryTime(r, "from", time.Time{})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "to", time.Time{})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		interval, err := analytics.ParseInterval(validators.ParseQueryString(r, "interval"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid interval"))
			return
		}

		buckets, err := svc.RevenueTimeseries(ctx, identity, analytics.TimeseriesInput{
			Interval: interval,
			From:     from,
			To:       to,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"buckets": buckets})
	}
}
