package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/carlosapgomes/eqmd-sub007/internal/handler"
	"github.com/carlosapgomes/eqmd-sub007/internal/middleware"
)

// Handler registers a route group on the API router.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type RouterConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
	MetricsPrefix  string
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	authH    Handler
	handlers []Handler
	h        *handler.Handler
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

// NewRouter assembles the engine with the shared middleware stack.
// authH serves unauthenticated login; everything in handlers sits
// behind authentication.
func NewRouter(auth *middleware.AuthMiddleware, authH Handler, h *handler.Handler, config RouterConfig, handlers ...Handler) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		authH:    authH,
		handlers: handlers,
		h:        h,
		metrics:  initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
	)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   config.RateLimitRPS,
		Burst: config.RateLimitBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/health/live", r.h.LivenessCheck)
	r.engine.GET("/health/ready", r.h.ReadinessCheck)
	r.engine.GET("/metrics", r.h.MetricsHandler)

	api := r.engine.Group("/api/v1")
	r.authH.RegisterRoutes(api)

	authed := api.Group("", r.auth.Authenticate())
	for _, h := range r.handlers {
		h.RegisterRoutes(authed)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: prefix,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "path", "status"}),
		requestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
