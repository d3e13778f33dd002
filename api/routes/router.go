package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evergreenfarmers/storefront/api/controllers"
	"github.com/evergreenfarmers/storefront/api/middleware"
	"github.com/evergreenfarmers/storefront/internal/cart"
	"github.com/evergreenfarmers/storefront/internal/catalog"
	"github.com/evergreenfarmers/storefront/internal/checkout"
	"github.com/evergreenfarmers/storefront/internal/contact"
	"github.com/evergreenfarmers/storefront/internal/newsletter"
	"github.com/evergreenfarmers/storefront/internal/reviews"
	"github.com/evergreenfarmers/storefront/pkg/config"
	"github.com/evergreenfarmers/storefront/pkg/db"
	"github.com/evergreenfarmers/storefront/pkg/logger"
	"github.com/evergreenfarmers/storefront/pkg/metrics"
	"github.com/evergreenfarmers/storefront/pkg/redis"
)

// Services bundles the domain services the storefront routes call.
type Services struct {
	Catalog    catalog.Service
	Cart       cart.Service
	Checkout   checkout.Service
	Reviews    reviews.Service
	Newsletter newsletter.Service
	Contact    contact.Service
}

// NewRouter wires the storefront routes. redisClient may be nil, which turns
// idempotency and submission rate limiting off and reports Redis as disabled
// on readiness.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionStore sessions.Store,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	var httpMetrics *metrics.HTTPMetrics
	if registry != nil {
		httpMetrics = metrics.NewHTTPMetrics(registry)
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger(redisClient)))
	})
	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	}

	reviewPolicy := middleware.NewRateLimitPolicy("review", cfg.RateLimit.Window, cfg.RateLimit.ReviewLimit, cfg.RateLimit.ReviewLimit)
	newsletterPolicy := middleware.NewRateLimitPolicy("newsletter", cfg.RateLimit.Window, cfg.RateLimit.NewsletterLimit, cfg.RateLimit.NewsletterLimit)
	contactPolicy := middleware.NewRateLimitPolicy("contact", cfg.RateLimit.Window, cfg.RateLimit.ContactLimit, cfg.RateLimit.ContactLimit)
	limiter := rateLimiter(redisClient)

	r.Group(func(r chi.Router) {
		r.Use(middleware.CartSession(sessionStore, cfg.Session.CookieName, logg))

		r.Get("/", controllers.Home(svcs.Catalog, logg))
		r.Get("/products/", controllers.ProductList(svcs.Catalog, logg))
		r.Get("/product/{slug}/", controllers.ProductDetail(svcs.Catalog, logg))
		r.Get("/category/{slug}/", controllers.CategoryPage(svcs.Catalog, logg))
		r.Get("/categories/", controllers.Categories(svcs.Catalog, logg))
		r.Get("/search/", controllers.Search(svcs.Catalog, logg))

		r.Route("/products/{slug}/reviews", func(r chi.Router) {
			r.Get("/", controllers.ReviewList(svcs.Reviews, logg))
			r.With(middleware.RateLimit(reviewPolicy, limiter, logg)).
				Post("/submit/", controllers.ReviewSubmit(svcs.Reviews, logg))
			r.Get("/stats/", controllers.ReviewStats(svcs.Reviews, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Post("/add/{productId}/", controllers.CartAdd(svcs.Cart, logg))
			r.Post("/update/{itemId}/", controllers.CartUpdate(svcs.Cart, logg))
			r.Post("/remove/{itemId}/", controllers.CartRemove(svcs.Cart, logg))
			r.Get("/summary/", controllers.CartSummary(svcs.Cart, logg))
			r.Post("/clear/", controllers.CartClear(svcs.Cart, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutPreview(svcs.Checkout, logg))
			r.Post("/", controllers.CheckoutSubmit(svcs.Checkout, logg))
			r.With(middleware.Idempotency(idempotencyStore(redisClient), middleware.IdempotencyOptions{
				TTL:        cfg.RateLimit.IdempotencyTTL,
				RequireKey: cfg.RateLimit.RequireIdempotent,
			}, logg)).Post("/whatsapp/", controllers.CheckoutWhatsApp(svcs.Checkout, logg))
		})

		r.Get("/orders/{orderNumber}/", controllers.OrderLookup(svcs.Checkout, logg))

		r.With(middleware.RateLimit(newsletterPolicy, limiter, logg)).
			Post("/newsletter/subscribe/", controllers.NewsletterSubscribe(svcs.Newsletter, logg))
		r.Post("/newsletter/unsubscribe/", controllers.NewsletterUnsubscribe(svcs.Newsletter, logg))
		r.With(middleware.RateLimit(contactPolicy, limiter, logg)).
			Post("/contact/", controllers.ContactSubmit(svcs.Contact, logg))
	})

	return r
}

// The helpers below keep a nil *redis.Client from becoming a non-nil
// interface value.

func redisPinger(client *redis.Client) controllers.Pinger {
	if client == nil {
		return nil
	}
	return client
}

func idempotencyStore(client *redis.Client) redis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}

func rateLimiter(client *redis.Client) redis.WindowCounter {
	if client == nil {
		return nil
	}
	return client
}
