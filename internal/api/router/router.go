package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/jobboard/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	service := deps.ServiceName
	if service == "" {
		service = "jobboard-api"
	}

	r.GET("/health", func(c *gin.Context) {
		body := gin.H{
			"status":  "healthy",
			"service": service,
		}

		if deps.Database != nil {
			if err := deps.Database.HealthCheck(c.Request.Context()); err != nil {
				body["status"] = "unhealthy"
				body["error"] = err.Error()
				c.JSON(http.StatusServiceUnavailable, body)
				return
			}
			body["database"] = deps.Database.Stats()
		}

		// Search keeps working without the broker; only pass triggers are affected.
		if deps.Broker != nil {
			if deps.Broker.IsConnected() {
				body["broker"] = "connected"
			} else {
				body["broker"] = "disconnected"
				body["status"] = "degraded"
			}
		}

		c.JSON(http.StatusOK, body)
	})

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.Metrics.Snapshot())
	})

	postingHandler := handler.NewPostingHandler(deps)
	passHandler := handler.NewPassHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		postings := v1.Group("/postings")
		{
			// GET /api/v1/postings/search - Ranked search over active postings
			postings.GET("/search", postingHandler.SearchPostings)

			// GET /api/v1/postings/suggestions - Word completions
			postings.GET("/suggestions", postingHandler.Suggestions)
		}

		// POST /api/v1/passes - Queue an alert pass for the worker
		v1.POST("/passes", passHandler.TriggerPass)
	}

	return r
}
