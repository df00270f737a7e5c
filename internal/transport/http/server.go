package http

import (
	"github.com/gin-gonic/gin"

	"pdfchat/internal/bootstrap"
	"pdfchat/internal/transport/http/handler"
	"pdfchat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.MaxMultipartMemory = app.Config.MaxUploadBytes()
	router.Use(middleware.RequestLogger(app.Logger), gin.Recovery(), middleware.CORS())

	checks := make(map[string]handler.HealthCheck)
	for name, check := range app.HealthChecks() {
		checks[name] = check
	}
	healthHandler := handler.NewHealthHandler(app.Config.App.Name, app.Config.App.Env, app.StartedAt, checks)
	ragHandler := handler.NewRAGHandler(app.RAG, app.Config.MaxUploadBytes(), app.Logger)

	router.GET("/metrics", gin.WrapH(app.Metrics.Handler()))

	api := router.Group("/api")
	api.GET("/health", healthHandler.Check)
	api.POST("/upload", ragHandler.Upload)
	api.POST("/chat", ragHandler.Chat)

	if app.Documents != nil {
		docHandler := handler.NewDocumentHandler(app.Documents, app.Logger)
		docs := api.Group("/documents")
		docs.GET("", docHandler.List)
		docs.GET("/:id", docHandler.Get)
		docs.DELETE("/:id", docHandler.Delete)
	}

	return router
}
