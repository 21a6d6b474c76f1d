// README: Quote handler; prices every shopper base for an origin.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campd/internal/modules/request"
	"campd/internal/types"
)

type QuoteHandler struct {
	requests *request.Service
}

func NewQuoteHandler(svc *request.Service) *QuoteHandler {
	return &QuoteHandler{requests: svc}
}

// quoteReq takes the origin as free text, an origin object, or flat lat/lng.
type quoteReq struct {
	Location string       `json:"location"`
	Origin   *types.Point `json:"origin"`
	Lat      *float64     `json:"lat"`
	Lng      *float64     `json:"lng"`
	Preset   string       `json:"preset"`
}

func (r quoteReq) origin() (*types.Point, bool) {
	if r.Origin != nil {
		return r.Origin, true
	}
	if r.Lat == nil && r.Lng == nil {
		return nil, true
	}
	if r.Lat == nil || r.Lng == nil {
		return nil, false
	}
	return &types.Point{Lat: *r.Lat, Lng: *r.Lng}, true
}

func (h *QuoteHandler) Quote(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	origin, ok := req.origin()
	if !ok {
		writeError(c, http.StatusBadRequest, "lat and lng must be sent together")
		return
	}
	if req.Location == "" && origin == nil {
		writeError(c, http.StatusBadRequest, "location or origin is required")
		return
	}
	res, err := h.requests.Quote(c.Request.Context(), request.QuoteCommand{
		Location: req.Location,
		Origin:   origin,
		Preset:   req.Preset,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}
