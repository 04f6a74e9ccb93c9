package http

import (
	"log/slog"

	"github.com/geocoder89/storefront/internal/auth"
	"github.com/geocoder89/storefront/internal/cache"
	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/http/handlers"
	"github.com/geocoder89/storefront/internal/http/middlewares"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the router needs; main builds it from config.
type Deps struct {
	Config   config.Config
	Auth     *auth.Service
	Products handlers.ProductsStore
	Cache    cache.ProductListCache
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	Checks   map[string]handlers.Pinger
}

func NewRouter(log *slog.Logger, d Deps) *gin.Engine {
	if d.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(observability.ServiceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORS(d.Config.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(d.Config.MaxBodyBytes))

	health := handlers.NewHealthHandler(d.Checks)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	authMW := middlewares.NewAuthMiddleware(d.Auth)

	api := r.Group("/api")
	api.Use(middlewares.RequireJSON())

	users := api.Group("/users")
	{
		h := handlers.NewAuthHandler(d.Auth, d.Prom)

		users.POST("/register", h.Register)
		users.POST("/login", h.Login)
		users.GET("/profile", authMW.RequireAuth(), h.Profile)
	}

	products := api.Group("/products")
	{
		h := handlers.NewProductsHandler(d.Products, d.Cache, d.Prom)
		admin := authMW.RequireAdmin()

		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.POST("", admin, h.CreateProduct)
		products.PUT("/:id", admin, h.UpdateProduct)
		products.DELETE("/:id", admin, h.DeleteProduct)
	}

	return r
}
