package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/memegen/internal/api/handler"
	"github.com/timmy/memegen/internal/api/middleware"
	"github.com/timmy/memegen/internal/config"
	"github.com/timmy/memegen/internal/logger"
)

// Services bundles what the router needs from the application.
type Services struct {
	Generator   handler.MemeGenerator
	Templates   handler.TemplateLister
	Generations handler.GenerationStore
	DB          handler.Pinger
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(svc Services, cfg config.ServerConfig, log *logger.Logger) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(cfg.CORS))

	healthHandler := handler.NewHealthHandler(svc.DB)
	memeHandler := handler.NewMemeHandler(svc.Generator)
	historyHandler := handler.NewHistoryHandler(svc.Templates, svc.Generations)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/memes/generate", memeHandler.Generate)

		v1.GET("/templates", historyHandler.ListTemplates)

		v1.GET("/generations", historyHandler.ListGenerations)
		v1.GET("/generations/:id", historyHandler.GetGeneration)
	}

	return r
}
