package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aion-commerce/aion-backend/api/controllers"
	"github.com/aion-commerce/aion-backend/api/middleware"
	authsvc "github.com/aion-commerce/aion-backend/internal/auth"
	cartsvc "github.com/aion-commerce/aion-backend/internal/cart"
	"github.com/aion-commerce/aion-backend/internal/catalog"
	checkoutsvc "github.com/aion-commerce/aion-backend/internal/checkout"
	couponsvc "github.com/aion-commerce/aion-backend/internal/coupons"
	"github.com/aion-commerce/aion-backend/internal/inventory"
	loyaltysvc "github.com/aion-commerce/aion-backend/internal/loyalty"
	"github.com/aion-commerce/aion-backend/internal/members"
	ordersvc "github.com/aion-commerce/aion-backend/internal/orders"
	wishlistsvc "github.com/aion-commerce/aion-backend/internal/wishlist"
	"github.com/aion-commerce/aion-backend/pkg/auth/session"
	"github.com/aion-commerce/aion-backend/pkg/config"
	"github.com/aion-commerce/aion-backend/pkg/enums"
	"github.com/aion-commerce/aion-backend/pkg/logger"
	pkgredis "github.com/aion-commerce/aion-backend/pkg/redis"
)

// Deps carries everything the HTTP layer needs wired in.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DBPinger       Pinger
	RedisClient    *pkgredis.Client
	SessionManager session.AccessSessionChecker
	Registry       *prometheus.Registry

	Auth     authsvc.Service
	Members  members.Service
	Catalog  catalog.Service
	Cart     cartsvc.Service
	Checkout checkoutsvc.Service
	Orders   ordersvc.Service
	Coupons  couponsvc.Service
	Loyalty  loyaltysvc.Service
	Wishlist wishlistsvc.Service
	Stock    inventory.Service
}

// Pinger is the health-check surface shared by backing stores.
type Pinger interface {
	Ping(context.Context) error
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

	var limiterStore middleware.RateLimiterStore
	var idempotencyStore pkgredis.IdempotencyStore
	var redisPinger Pinger
	if deps.RedisClient != nil {
		limiterStore = deps.RedisClient
		idempotencyStore = deps.RedisClient
		redisPinger = deps.RedisClient
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, redisPinger))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, limiterStore, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, limiterStore, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
			r.With(middleware.Auth(cfg.JWT, deps.SessionManager, logg)).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
		})

		r.Route("/perfumes", func(r chi.Router) {
			r.Get("/", controllers.PerfumeList(deps.Catalog, logg))
			r.Get("/{perfumeId}", controllers.PerfumeGet(deps.Catalog, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
			r.Use(middleware.Idempotency(idempotencyStore, logg))

			r.Route("/members/me", func(r chi.Router) {
				r.Get("/", controllers.MemberProfile(deps.Members, logg))
				r.Put("/", controllers.MemberProfileUpdate(deps.Members, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(deps.Cart, logg))
				r.Post("/lines", controllers.CartAdd(deps.Cart, logg))
				r.Put("/lines/{lineId}", controllers.CartUpdateLine(deps.Cart, logg))
				r.Delete("/lines/{lineId}", controllers.CartRemoveLine(deps.Cart, logg))
			})

			r.Post("/checkout", controllers.Checkout(deps.Checkout, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(deps.Orders, logg))
				r.Get("/{orderId}", controllers.OrderGet(deps.Orders, logg))
			})

			r.Route("/coupons", func(r chi.Router) {
				r.Get("/", controllers.CouponList(deps.Coupons, logg))
				r.Post("/{couponId}/issue", controllers.CouponIssue(deps.Coupons, logg))
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistFetch(deps.Wishlist, logg))
				r.Post("/", controllers.WishlistAdd(deps.Wishlist, logg))
				r.Delete("/{itemId}", controllers.WishlistRemove(deps.Wishlist, logg))
			})

			r.Route("/points", func(r chi.Router) {
				r.Get("/", controllers.PointsBalance(deps.Loyalty, logg))
				r.Get("/history", controllers.PointsHistory(deps.Loyalty, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
		r.Use(middleware.RequireRole(logg, string(enums.MemberRoleAdmin)))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/perfumes", func(r chi.Router) {
			r.Get("/", controllers.AdminPerfumeList(deps.Catalog, logg))
			r.Post("/", controllers.AdminPerfumeCreate(deps.Catalog, logg))
			r.Put("/{perfumeId}", controllers.AdminPerfumeUpdate(deps.Catalog, logg))
			r.Patch("/{perfumeId}/active", controllers.AdminPerfumeSetActive(deps.Catalog, logg))
			r.Post("/{perfumeId}/stock", controllers.AdminPerfumeAdjustStock(deps.Stock, logg))
			r.Get("/{perfumeId}/stock/history", controllers.AdminPerfumeStockHistory(deps.Stock, logg))
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", controllers.AdminCouponDefinitionList(deps.Coupons, logg))
			r.Post("/", controllers.AdminCouponDefinitionCreate(deps.Coupons, logg))
		})

		r.Post("/inventory/reconcile", controllers.AdminInventoryReconcile(deps.Stock, logg))
	})

	return r
}
