package router

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdsync/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares. Every route
// except /healthz runs while holding lock.
func New(handler *handlers.Handler, lock sync.Locker, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/")
	if lock != nil {
		api.Use(serialize(lock))
	}

	api.GET("/herds", handler.ListHerds)
	api.POST("/herds", handler.CreateHerd)
	api.PUT("/herds/:id", handler.UpdateHerd)
	api.DELETE("/herds/:id", handler.DeleteHerd)

	api.GET("/defaults/goals", handler.DefaultGoals)
	api.GET("/goals/:day", handler.GetGoals)
	api.PUT("/goals/:day", handler.SaveGoals)

	api.GET("/records/:day", handler.GetRecord)
	api.PUT("/records/:day/:product", handler.SetProduct)
	api.GET("/plan/:day", handler.GetPlan)

	api.GET("/statistics", handler.GetStatistics)
	api.POST("/statistics/reconcile", handler.Reconcile)
	api.POST("/reset", handler.Reset)
	api.POST("/commands", handler.RunCommand)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func serialize(lock sync.Locker) gin.HandlerFunc {
	return func(c *gin.Context) {
		lock.Lock()
		defer lock.Unlock()
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
