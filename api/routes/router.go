package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/phantomos-app/phantomos-backend/api/controllers"
	"github.com/phantomos-app/phantomos-backend/api/middleware"
	"github.com/phantomos-app/phantomos-backend/internal/analytics"
	"github.com/phantomos-app/phantomos-backend/internal/assets"
	auditsvc "github.com/phantomos-app/phantomos-backend/internal/audit"
	"github.com/phantomos-app/phantomos-backend/internal/connectors"
	"github.com/phantomos-app/phantomos-backend/internal/importer"
	"github.com/phantomos-app/phantomos-backend/internal/invitations"
	"github.com/phantomos-app/phantomos-backend/internal/mapping"
	"github.com/phantomos-app/phantomos-backend/internal/products"
	"github.com/phantomos-app/phantomos-backend/internal/tagging"
	"github.com/phantomos-app/phantomos-backend/pkg/config"
	"github.com/phantomos-app/phantomos-backend/pkg/logger"
	"github.com/phantomos-app/phantomos-backend/pkg/metrics"
	"github.com/phantomos-app/phantomos-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics
	Redis       *redis.Client

	DBPinger    controllers.Pinger
	RedisPinger controllers.Pinger

	Assets      assets.Service
	Products    products.Service
	Mapping     mapping.Service
	Tagging     tagging.Service
	Analytics   analytics.Service
	Connectors  connectors.Service
	Importer    importer.Service
	Invitations invitations.Service
	Audit       auditsvc.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, d.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": d.DBPinger,
			"redis":    d.RedisPinger,
		}))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(d.Registry))
	}

	// Public surfaces: the OAuth callback authenticates with an HMAC
	// signature, invite redemption with the one-time token itself.
	r.Post("/api/v1/invitations/redeem", controllers.RedeemInvitation(d.Invitations, logg))
	r.Get("/api/v1/connectors/shopify/callback", controllers.ShopifyCallback(d.Connectors, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, cfg.Demo, logg))

		r.Route("/assets", func(r chi.Router) {
			// The collection reads grouped by Game IP; /search serves the
			// flat filtered page.
			r.Get("/", controllers.ListGameIPs(d.Assets, logg))
			r.Get("/search", controllers.ListAssets(d.Assets, logg))
			r.Get("/{assetId}", controllers.GetAsset(d.Assets, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireWriteAccess(logg))
				r.Post("/", controllers.CreateAsset(d.Assets, logg))
				r.Patch("/{assetId}", controllers.UpdateAsset(d.Assets, logg))
				r.Delete("/{assetId}", controllers.DeleteAsset(d.Assets, logg))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(d.Products, logg))
			r.Get("/stats", controllers.ProductStats(d.Products, logg))
			r.Get("/{productId}", controllers.GetProduct(d.Products, logg))

			// Auto-tag only writes machine suggestions, so viewers may
			// trigger it.
			r.Post("/auto-tag", controllers.AutoTagProducts(d.Tagging, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireWriteAccess(logg))
				r.Post("/", controllers.CreateProduct(d.Products, logg))
				r.Patch("/{productId}", controllers.UpdateProduct(d.Products, logg))
				r.Delete("/{productId}", controllers.DeleteProduct(d.Products, logg))

				r.Post("/mapping", controllers.ConfirmMapping(d.Mapping, logg))
				r.Put("/mapping", controllers.SkipMapping(d.Mapping, logg))
				r.Post("/mapping/bulk", controllers.BulkConfirmMapping(d.Mapping, logg))
				r.Put("/mapping/bulk", controllers.BulkSkipMapping(d.Mapping, logg))

				r.Post("/{productId}/assets", controllers.AddProductLinks(d.Mapping, logg))
				r.Delete("/{productId}/assets", controllers.UnlinkProductAsset(d.Mapping, logg))
			})
		})

		r.Route("/ai", func(r chi.Router) {
			r.Use(middleware.RequireWriteAccess(logg))
			r.With(middleware.AIRateLimit(cfg.AIRateLimit, d.Redis, logg)).
				Post("/tagging", controllers.SuggestTags(d.Tagging, logg))
			r.Put("/tagging", controllers.SuggestTagsBatch(d.Tagging, logg))
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/assets", controllers.AssetPerformance(d.Analytics, logg))
			r.Get("/categories", controllers.CategoryPerformance(d.Analytics, logg))
			r.Get("/timeseries", controllers.RevenueTimeseries(d.Analytics, logg))
		})

		r.With(middleware.RequireWriteAccess(logg)).
			Post("/imports/csv", controllers.ImportProductsCSV(d.Importer, logg))

		r.Route("/connectors", func(r chi.Router) {
			r.Get("/", controllers.ListConnectors(d.Connectors, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireWriteAccess(logg))
				r.Post("/shopify/connect", controllers.ConnectShopify(d.Connectors, logg))
				r.Post("/{connectorId}/sync", controllers.SyncConnector(d.Connectors, logg))
				r.Delete("/{connectorId}", controllers.DisconnectConnector(d.Connectors, logg))
			})
		})

		r.Get("/audit", controllers.ListAuditLog(d.Audit, logg))

		r.With(middleware.RequireWriteAccess(logg)).
			Post("/invitations", controllers.CreateInvitation(d.Invitations, logg))
	})

	return r
}
