// README: Requester-facing handlers: create, get, list, events, rate.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campd/internal/modules/request"
)

type RequestHandler struct {
	requests  *request.Service
	listLimit int
}

func NewRequestHandler(svc *request.Service, listLimit int) *RequestHandler {
	if listLimit <= 0 {
		listLimit = 100
	}
	return &RequestHandler{requests: svc, listLimit: listLimit}
}

type createRequestReq struct {
	request.CreateInput
	Preset string `json:"preset"`
}

func (h *RequestHandler) Create(c *gin.Context) {
	var req createRequestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	r, err := h.requests.Create(c.Request.Context(), request.CreateCommand{Input: req.CreateInput, Preset: req.Preset})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, r)
}

func (h *RequestHandler) Get(c *gin.Context) {
	id, ok := trackingID(c)
	if !ok {
		return
	}
	r, err := h.requests.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}

func (h *RequestHandler) List(c *gin.Context) {
	limit := h.listLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, h.listLimit)
	}
	var status request.Status
	if v := c.Query("status"); v != "" {
		st, ok := request.ParseStatus(v)
		if !ok {
			writeError(c, http.StatusBadRequest, "unknown status")
			return
		}
		status = st
	}
	rs, err := h.requests.List(c.Request.Context(), request.ListFilter{
		Status:           status,
		Shopper:          c.Query("shopper"),
		RequesterContact: c.Query("contact"),
		Limit:            limit,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if rs == nil {
		rs = []*request.DeliveryRequest{}
	}
	writeJSON(c, http.StatusOK, map[string]any{"requests": rs})
}

func (h *RequestHandler) Events(c *gin.Context) {
	id, ok := trackingID(c)
	if !ok {
		return
	}
	events, err := h.requests.Events(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if events == nil {
		events = []request.Event{}
	}
	writeJSON(c, http.StatusOK, map[string]any{"events": events})
}

type rateReq struct {
	Rating *int `json:"rating"`
}

func (h *RequestHandler) Rate(c *gin.Context) {
	id, ok := trackingID(c)
	if !ok {
		return
	}
	var req rateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Rating == nil {
		writeError(c, http.StatusBadRequest, "missing rating")
		return
	}
	r, err := h.requests.Rate(c.Request.Context(), request.RateCommand{TrackingID: id, Rating: *req.Rating})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}

// Transition applies any lifecycle event posted as {"event": ..., "actor": ...}.
func (h *RequestHandler) Transition(c *gin.Context) {
	id, ok := trackingID(c)
	if !ok {
		return
	}
	var t request.Transition
	if err := c.ShouldBindJSON(&t); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	r, err := h.requests.Transition(c.Request.Context(), id, t)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}
