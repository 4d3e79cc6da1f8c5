package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sellerdeskhq/sellerdesk-backend/api/controllers"
	"github.com/sellerdeskhq/sellerdesk-backend/api/middleware"
	"github.com/sellerdeskhq/sellerdesk-backend/internal/inventory"
	"github.com/sellerdeskhq/sellerdesk-backend/internal/ledger"
	"github.com/sellerdeskhq/sellerdesk-backend/internal/pricing"
	"github.com/sellerdeskhq/sellerdesk-backend/internal/warehouses"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/config"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/enums"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/logger"
	pkgredis "github.com/sellerdeskhq/sellerdesk-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config     *config.Config
	Logger     *logger.Logger
	DBPinger   controllers.Pinger
	Redis      *pkgredis.Client
	Gatherer   prometheus.Gatherer
	Inventory  inventory.Service
	Movements  ledger.Service
	Pricing    pricing.Service
	Warehouses warehouses.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	readiness := map[string]controllers.Pinger{}
	if deps.DBPinger != nil {
		readiness["db"] = deps.DBPinger
	}
	if deps.Redis != nil {
		readiness["redis"] = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if deps.Redis != nil {
			r.Use(middleware.RateLimit(cfg.RateLimit, deps.Redis, logg))
			r.Use(middleware.Idempotency(cfg.Idempotency, deps.Redis, logg))
		}

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/inventory", func(r chi.Router) {
			r.Post("/receive", controllers.InventoryReceive(deps.Inventory, logg))
			r.Post("/reserve", controllers.InventoryReserve(deps.Inventory, logg))
			r.Post("/reservations/{reservationId}/release", controllers.InventoryRelease(deps.Inventory, logg))
			r.Post("/reservations/{reservationId}/fulfill", controllers.InventoryFulfill(deps.Inventory, logg))
			r.Put("/reorder-point", controllers.InventorySetReorderPoint(deps.Inventory, logg))
			r.Get("/status", controllers.InventoryStatus(deps.Inventory, logg))
			r.Get("/low-stock", controllers.InventoryLowStock(deps.Inventory, logg))
			r.Get("/movements", controllers.InventoryMovements(deps.Movements, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.MemberRoleAdmin), logg))
				r.Delete("/items", controllers.InventoryDeleteItem(deps.Inventory, logg))
			})
		})

		r.Get("/pricing/resolve", controllers.PricingResolve(deps.Pricing, logg))

		r.Route("/warehouses", func(r chi.Router) {
			r.Get("/", controllers.WarehouseList(deps.Warehouses, logg))
			r.Get("/{warehouseId}", controllers.WarehouseGet(deps.Warehouses, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.MemberRoleAdmin), logg))
				r.Post("/", controllers.WarehouseCreate(deps.Warehouses, logg))
				r.Patch("/{warehouseId}", controllers.WarehouseRename(deps.Warehouses, logg))
				r.Delete("/{warehouseId}", controllers.WarehouseDelete(deps.Warehouses, logg))
			})
		})

		r.Route("/price-books", func(r chi.Router) {
			r.Get("/", controllers.PriceBookList(deps.Pricing, logg))
			r.Get("/{priceBookId}", controllers.PriceBookGet(deps.Pricing, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.MemberRoleAdmin), logg))
				r.Post("/", controllers.PriceBookCreate(deps.Pricing, logg))
				r.Patch("/{priceBookId}", controllers.PriceBookUpdate(deps.Pricing, logg))
				r.Delete("/{priceBookId}", controllers.PriceBookDelete(deps.Pricing, logg))
				r.Put("/{priceBookId}/entries/{productId}", controllers.PriceBookUpsertEntry(deps.Pricing, logg))
				r.Delete("/{priceBookId}/entries/{productId}", controllers.PriceBookRemoveEntry(deps.Pricing, logg))
			})
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(string(enums.MemberRoleAdmin), logg))
		r.Get("/ping", controllers.AdminPing())
	})

	return r
}
