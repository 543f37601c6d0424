// Package stubserver emulates the conversion service's HTTP API for local
// development and integration tests. Conversion jobs are simulated with
// timers — there is no actual pipeline behind it.
package stubserver

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vidconv/vidconv/internal/cache"
	"github.com/vidconv/vidconv/internal/config"
	"github.com/vidconv/vidconv/internal/logging"
	"github.com/vidconv/vidconv/internal/metrics"
)

// Server is the stub API server.
type Server struct {
	store     *store
	cache     cache.Cache
	jwtSecret string
	logger    *logging.Logger
}

// New creates a stub server from config. The format cache is in-memory
// unless Redis is enabled.
func New(cfg config.StubConfig, logger *logging.Logger) (*Server, error) {
	var c cache.Cache
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		c = rc
	} else {
		c = cache.NewMemoryCache()
	}

	return &Server{
		store:     newStore(cfg.ProcessingDuration, cfg.FailureRate),
		cache:     c,
		jwtSecret: cfg.JWTSecret,
		logger:    logger,
	}, nil
}

// Close releases the job timers and the cache.
func (s *Server) Close() error {
	s.store.close()
	return s.cache.Close()
}

// Router builds the gin engine with all routes mounted.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestMetrics())

	// Public endpoints
	router.POST("/auth/login", s.loginHandler)
	router.GET("/status", s.statusHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Authenticated endpoints
	authed := router.Group("/", s.bearerAuth())
	{
		authed.GET("users/me", s.meHandler)

		users := authed.Group("users", s.adminOnly())
		{
			users.GET("", s.listUsersHandler)
			users.POST("", s.createUserHandler)
			users.GET("/:id", s.getUserHandler)
			users.PUT("/:id", s.updateUserHandler)
			users.DELETE("/:id", s.deleteUserHandler)
			users.GET("/:id/videos", s.userVideosHandler)
		}

		videos := authed.Group("videos")
		{
			videos.GET("/", s.listVideosHandler)
			videos.POST("/", s.insertVideoHandler)
			videos.GET("/:id", s.getVideoHandler)
			videos.DELETE("/:id", s.deleteVideoHandler)
			videos.GET("/:id/formats", s.formatsHandler)
			videos.POST("/:id/formats", s.formatsHandler)
			videos.POST("/:id/process", s.processHandler)
			videos.GET("/:id/status", s.jobStatusHandler)
			videos.GET("/:id/download", s.downloadHandler)
		}

		authed.GET("cookies", s.cookieStatusHandler)
		authed.POST("cookies", s.uploadCookiesHandler)
		authed.DELETE("cookies", s.deleteCookiesHandler)
	}

	return router
}

// requestMetrics records Prometheus metrics and a debug log line per
// request.
func (s *Server) requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status()), duration.Seconds())
		s.logger.LogAPICall(c.Request.Method, c.Request.URL.Path, c.Writer.Status(), duration)
	}
}
