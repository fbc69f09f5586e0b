package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/maitrisea/backend/config"
	"github.com/maitrisea/backend/internal/handler"
)

func Setup(
	cfg *config.Config,
	projectHandler *handler.ProjectHandler,
	timelineHandler *handler.TimelineHandler,
	templateHandler *handler.TemplateHandler,
	settingsHandler *handler.SettingsHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", handler.UserHeader},
		ExposeHeaders: []string{"Content-Length"},
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		projectHandler.RegisterRoutes(api)
		timelineHandler.RegisterRoutes(api)
		templateHandler.RegisterRoutes(api)
		settingsHandler.RegisterRoutes(api)
	}

	return r
}
