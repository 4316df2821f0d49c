package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP engine with all routes configured.
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware, the frontend is served from a different origin
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	api := r.Group("/api")
	{
		api.GET("/test", handler.GetHealth)

		api.GET("/:domain/updates", handler.GetUpdates)
		api.GET("/:domain/updates/latest", handler.GetLatest)
		api.GET("/:domain/updates/stats", handler.GetStats)
		api.GET("/:domain/updates/categories", handler.GetCategories)
		api.POST("/:domain/updates/refresh", handler.PostRefresh)
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "RSS Veille",
			"description": "RSS aggregation engine for the windows, cloud and starlink verticals",
			"endpoints": map[string]string{
				"updates":    "/api/<domain>/updates",
				"latest":     "/api/<domain>/updates/latest",
				"stats":      "/api/<domain>/updates/stats",
				"categories": "/api/<domain>/updates/categories",
				"refresh":    "/api/<domain>/updates/refresh (POST)",
				"health":     "/api/test",
			},
			"domains": []string{"windows", "cloud", "starlink"},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}
