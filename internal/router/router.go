package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/projectboard/internal/handlers"
	"github.com/monocle-dev/projectboard/internal/middleware"
	"github.com/monocle-dev/projectboard/internal/realtime"
	"github.com/monocle-dev/projectboard/internal/repository"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the HTTP surface is built from.
type Dependencies struct {
	Projects       repository.ProjectRepository
	Actions        repository.ActionRepository
	Hub            *realtime.Hub
	DB             handlers.Pinger
	Logger         *zap.Logger
	AllowedOrigins []string
}

func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.New(corsConfig(deps.AllowedOrigins)))

	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})

	health := handlers.NewHealthHandler(deps.DB, deps.Logger)
	projectHandler := handlers.NewProjectHandler(deps.Projects, deps.Actions, deps.Hub, deps.Logger)
	actionHandler := handlers.NewActionHandler(deps.Actions, deps.Hub, deps.Logger)
	wsHandler := handlers.NewWebSocketHandler(deps.Projects, deps.Hub, deps.Logger)

	r.GET("/health", health.HealthCheck)

	projects := r.Group("/projects")
	{
		projects.GET("", projectHandler.ListProjects)
		projects.POST("", projectHandler.CreateProject)
		projects.GET("/:id", projectHandler.GetProject)
		projects.PUT("/:id", projectHandler.UpdateProject)
		projects.DELETE("/:id", projectHandler.DeleteProject)
		projects.GET("/:id/actions", projectHandler.ListProjectActions)
		projects.GET("/:id/ws", wsHandler.WebSocket)
	}

	actions := r.Group("/actions")
	{
		actions.GET("", actionHandler.ListActions)
		actions.POST("", actionHandler.CreateAction)
		actions.GET("/:id", actionHandler.GetAction)
		actions.PUT("/:id", actionHandler.UpdateAction)
		actions.DELETE("/:id", actionHandler.DeleteAction)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Accept", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}

	if len(origins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return false }
		return cfg
	}

	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
