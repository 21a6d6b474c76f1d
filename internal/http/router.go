// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campd/internal/http/handlers"
	"campd/internal/http/middleware"
	"campd/internal/modules/catalog"
	"campd/internal/modules/request"
)

type RouterDeps struct {
	Requests  *request.Service
	Campuses  *catalog.Catalog
	Bases     *catalog.Catalog
	AccessKey string
	ListLimit int
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logging())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api", middleware.AccessKey(deps.AccessKey))

	quoteHandler := handlers.NewQuoteHandler(deps.Requests)
	api.POST("/quotes", quoteHandler.Quote)

	requestHandler := handlers.NewRequestHandler(deps.Requests, deps.ListLimit)
	api.POST("/requests", requestHandler.Create)
	api.GET("/requests", requestHandler.List)
	api.GET("/requests/:id", requestHandler.Get)
	api.GET("/requests/:id/events", requestHandler.Events)
	api.POST("/requests/:id/rate", requestHandler.Rate)
	api.POST("/requests/:id/transition", requestHandler.Transition)

	shopperHandler := handlers.NewShopperHandler(deps.Requests)
	api.POST("/requests/:id/accept", shopperHandler.Accept)
	api.POST("/requests/:id/deliver", shopperHandler.Deliver)
	api.POST("/requests/:id/cancel", shopperHandler.Cancel)

	catalogHandler := handlers.NewCatalogHandler(deps.Campuses, deps.Bases, deps.Requests)
	api.GET("/catalog/campuses", catalogHandler.Campuses)
	api.GET("/catalog/bases", catalogHandler.Bases)
	api.GET("/stats", catalogHandler.Stats)

	return r
}
