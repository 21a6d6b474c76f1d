// README: Shopper handlers for accept, deliver, cancel.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campd/internal/modules/request"
)

type ShopperHandler struct {
	requests *request.Service
}

func NewShopperHandler(svc *request.Service) *ShopperHandler {
	return &ShopperHandler{requests: svc}
}

type shopperActionReq struct {
	ShopperID string `json:"shopper_id"`
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	Base      string `json:"base"`
	Reason    string `json:"reason"`
}

func bindShopperAction(c *gin.Context) (shopperActionReq, bool) {
	var req shopperActionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return req, false
	}
	if req.ShopperID == "" {
		writeError(c, http.StatusBadRequest, "missing shopper_id")
		return req, false
	}
	return req, true
}

func (h *ShopperHandler) Accept(c *gin.Context) {
	id, ok := trackingID(c)
	if !ok {
		return
	}
	req, ok := bindShopperAction(c)
	if !ok {
		return
	}
	r, err := h.requests.Accept(c.Request.Context(), request.AcceptCommand{
		TrackingID: id,
		Shopper: request.ShopperIdentity{
			ID:      req.ShopperID,
			Name:    req.Name,
			Contact: req.Contact,
			Base:    req.Base,
		},
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}

func (h *ShopperHandler) Deliver(c *gin.Context) {
	id, ok := trackingID(c)
	if !ok {
		return
	}
	req, ok := bindShopperAction(c)
	if !ok {
		return
	}
	r, err := h.requests.MarkDelivered(c.Request.Context(), request.DeliverCommand{TrackingID: id, Actor: req.ShopperID})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}

func (h *ShopperHandler) Cancel(c *gin.Context) {
	id, ok := trackingID(c)
	if !ok {
		return
	}
	req, ok := bindShopperAction(c)
	if !ok {
		return
	}
	r, err := h.requests.Cancel(c.Request.Context(), request.CancelCommand{TrackingID: id, Actor: req.ShopperID, Reason: req.Reason})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}
