// README: Read-only catalog and dashboard handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campd/internal/modules/catalog"
	"campd/internal/modules/request"
)

type CatalogHandler struct {
	campuses *catalog.Catalog
	bases    *catalog.Catalog
	requests *request.Service
}

func NewCatalogHandler(campuses, bases *catalog.Catalog, requests *request.Service) *CatalogHandler {
	return &CatalogHandler{campuses: campuses, bases: bases, requests: requests}
}

func (h *CatalogHandler) Campuses(c *gin.Context) {
	writeJSON(c, http.StatusOK, map[string]any{"campuses": h.campuses.Places()})
}

func (h *CatalogHandler) Bases(c *gin.Context) {
	writeJSON(c, http.StatusOK, map[string]any{"shopper_bases": h.bases.Places()})
}

func (h *CatalogHandler) Stats(c *gin.Context) {
	st, err := h.requests.Stats(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, st)
}
