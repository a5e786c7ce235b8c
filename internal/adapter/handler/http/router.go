package http

import (
	"strings"

	"github.com/sm8ta/mongo_user_service/internal/config"
	"github.com/sm8ta/mongo_user_service/internal/core/ports"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Router struct {
	*gin.Engine
}

func NewRouter(
	config *config.HTTP,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
	userHandler *UserHandler,
	healthHandler *HealthHandler,
) (*Router, error) {
	if config.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	// CORS
	ginConfig := cors.DefaultConfig()
	originsList := strings.Split(config.AllowedOrigins, ",")
	if len(originsList) == 1 && strings.TrimSpace(originsList[0]) == "*" {
		ginConfig.AllowAllOrigins = true
	} else {
		for i := range originsList {
			originsList[i] = strings.TrimSpace(originsList[i])
		}
		ginConfig.AllowOrigins = originsList
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(logger), cors.New(ginConfig))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Metrics
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Probes
	router.GET("/healthz", healthHandler.Healthz)
	router.GET("/readyz", healthHandler.Readyz)

	// Static segments win over :id in gin's tree
	users := router.Group("/users")
	{
		users.GET("", userHandler.ListUsers)
		users.POST("", userHandler.CreateUser)
		users.GET("/admin", userHandler.ListAdmins)
		users.GET("/average-age", userHandler.AverageAge)
		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	return &Router{
		Engine: router,
	}, nil
}
