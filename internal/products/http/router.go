package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	healthStatusOK        = "ok"
	healthStatusUnhealthy = "unhealthy"
	healthDegraded        = "degraded"

	cachePingTimeout = time.Second
)

type HealthChecker interface {
	Health() error
}

type CachePinger interface {
	Ping(ctx context.Context) error
}

func RegisterRoutes(router *gin.Engine, handler *Handler, checker HealthChecker, cache CachePinger) {
	router.POST("/products", handler.CreateProduct)
	router.GET("/products", handler.GetProducts)
	router.GET("/products/:id", handler.GetProductByID)
	router.PUT("/products/:id", handler.UpdateProduct)
	router.DELETE("/products/:id", handler.DeleteProduct)
	router.POST("/products/:id/reduce-quantity", handler.ReduceProductQuantity)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", healthHandler(checker, cache))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthHandler reports unhealthy only when the store is down. The service
// keeps serving without its cache, so a cache failure is reported as degraded.
func healthHandler(checker HealthChecker, cache CachePinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := checker.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": healthStatusUnhealthy})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), cachePingTimeout)
		defer cancel()

		cacheStatus := healthStatusOK
		if err := cache.Ping(ctx); err != nil {
			cacheStatus = healthDegraded
		}
		c.JSON(http.StatusOK, gin.H{"status": healthStatusOK, "cache": cacheStatus})
	}
}
