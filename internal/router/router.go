package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	authhandler "github.com/dangkhoa18052004/hospital-api/internal/handler/auth"
	bookinghandler "github.com/dangkhoa18052004/hospital-api/internal/handler/booking"
	healthhandler "github.com/dangkhoa18052004/hospital-api/internal/handler/health"
	medicalhandler "github.com/dangkhoa18052004/hospital-api/internal/handler/medical"
	notificationhandler "github.com/dangkhoa18052004/hospital-api/internal/handler/notification"
	reviewhandler "github.com/dangkhoa18052004/hospital-api/internal/handler/review"
	schedulehandler "github.com/dangkhoa18052004/hospital-api/internal/handler/schedule"
	settinghandler "github.com/dangkhoa18052004/hospital-api/internal/handler/setting"
	"github.com/dangkhoa18052004/hospital-api/internal/middleware"
	"github.com/dangkhoa18052004/hospital-api/pkg/logger"
)

type Config struct {
	RateLimit rate.Limit
	RateBurst int
	CORS      middleware.CORSConfig
}

type Handlers struct {
	Auth         *authhandler.Handler
	Booking      *bookinghandler.Handler
	Schedule     *schedulehandler.Handler
	Medical      *medicalhandler.Handler
	Review       *reviewhandler.Handler
	Notification *notificationhandler.Handler
	Setting      *settinghandler.Handler
	Health       *healthhandler.Handler
}

type Router struct {
	engine  *gin.Engine
	metrics *httpMetrics
}

type httpMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func New(cfg Config, handlers Handlers, auth *middleware.AuthMiddleware, l *logger.Logger) (*Router, error) {
	gin.SetMode(gin.ReleaseMode)
	if err := middleware.RegisterValidators(); err != nil {
		return nil, err
	}
	engine := gin.New()

	r := &Router{
		engine: engine,
		metrics: &httpMetrics{
			requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			}, []string{"method", "path", "status"}),
			requestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			}, []string{"method", "path", "status"}),
		},
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(l),
		r.metricsMiddleware(),
		middleware.CORS(cfg.CORS),
	)

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  cfg.RateLimit,
		Burst: cfg.RateBurst,
	})
	engine.Use(limiter.RateLimit())

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api/v1")
	handlers.Health.RegisterRoutes(api)
	handlers.Auth.RegisterRoutes(api)
	handlers.Booking.RegisterRoutes(api, auth)
	handlers.Schedule.RegisterRoutes(api, auth)
	handlers.Medical.RegisterRoutes(api, auth)
	handlers.Review.RegisterRoutes(api, auth)
	handlers.Notification.RegisterRoutes(api, auth)
	handlers.Setting.RegisterRoutes(api, auth)

	return r, nil
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
