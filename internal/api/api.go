package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/retail-insights/internal/api/handlers"
	"github.com/andresuchdata/retail-insights/internal/api/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var localOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

type Services struct {
	Analytics handlers.Analytics
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// NewRouter builds the gin engine. Analytics routes live under /api/v1/analytics.
func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		cors.New(corsConfig(allowedOrigins)),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if services == nil {
		return router
	}
	if services.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(services.Gatherer, promhttp.HandlerOpts{})))
	}
	if services.Analytics != nil {
		handlers.NewAnalyticsHandler(services.Analytics).Register(router.Group("/api/v1/analytics"))
	}
	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins:     localOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	origins, allowAll := normalizeAllowedOrigins(allowedOrigins)
	switch {
	case allowAll:
		// Credentials rule out a literal "*", so echo the caller's origin instead.
		cfg.AllowOrigins = nil
		cfg.AllowOriginFunc = func(string) bool { return true }
	case len(origins) > 0:
		cfg.AllowOrigins = origins
	}
	return cfg
}

// normalizeAllowedOrigins flattens comma-separated entries and reports
// whether a wildcard was present.
func normalizeAllowedOrigins(entries []string) ([]string, bool) {
	var origins []string
	allowAll := false
	for _, entry := range entries {
		for _, origin := range strings.FieldsFunc(entry, func(r rune) bool { return r == ',' }) {
			origin = strings.TrimSpace(origin)
			switch origin {
			case "":
			case "*":
				allowAll = true
			default:
				origins = append(origins, origin)
			}
		}
	}
	return origins, allowAll
}
