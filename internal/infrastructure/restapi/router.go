package restapi

import (
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gas_checker/internal/infrastructure/configloader"
	"gas_checker/internal/pkg/metrics"
)

// SetupRouter настраивает и возвращает экземпляр Gin роутера.
func SetupRouter(handler *GasHandler, cfg configloader.ServerConfig, zapLogger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	router.Use(ZapLoggerMiddleware(zapLogger))
	router.Use(gin.Recovery())

	router.GET("/health", HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		gas := v1.Group("/gas")
		gas.POST("/sufficiency", handler.PostSufficiencyHandler)
		gas.POST("/costs", handler.PostGasCostsHandler)
		gas.POST("/refuel", handler.PostRefuelHandler)

		v1.GET("/chains", handler.GetChainsHandler)
		v1.GET("/chains/:chainId", handler.GetChainHandler)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	for _, origin := range origins {
		if origin == "*" {
			corsCfg.AllowAllOrigins = true
			return corsCfg
		}
	}
	if len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}
	corsCfg.AllowOrigins = origins
	return corsCfg
}

// ZapLoggerMiddleware logs every request and records its latency.
func ZapLoggerMiddleware(zapLogger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		latency := time.Since(start)
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Observe(latency.Seconds())

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			zapLogger.Warn("HTTP request failed", append(fields, zap.String("errors", c.Errors.String()))...)
			return
		}
		zapLogger.Debug("HTTP request", fields...)
	}
}
