// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"campd/internal/modules/location"
	"campd/internal/modules/pricing"
	"campd/internal/modules/request"
	"campd/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// isValidID accepts alphanumeric ids of at most 32 characters.
func isValidID(v string) bool {
	if v == "" || len(v) > 32 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	var fe *request.MissingFieldError
	switch {
	case errors.As(err, &fe):
		writeJSON(c, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: fe.Field})
	case errors.Is(err, types.ErrInvalidPoint), errors.Is(err, request.ErrInvalidRating),
		errors.Is(err, request.ErrUnknownEvent):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, request.ErrNotFound), errors.Is(err, location.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, request.ErrNotOwner):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, request.ErrAlreadyAssigned), errors.Is(err, request.ErrInvalidTransition),
		errors.Is(err, request.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, pricing.ErrInvalidConfiguration):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, types.ErrUpstreamUnavailable):
		log.Printf("http: %s %s: %v", c.Request.Method, c.FullPath(), err)
		writeError(c, http.StatusBadGateway, "upstream unavailable")
	default:
		log.Printf("http: %s %s: %v", c.Request.Method, c.FullPath(), err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// trackingID reads and checks the :id path parameter; it writes the 400 itself.
func trackingID(c *gin.Context) (types.ID, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid tracking id")
		return "", false
	}
	return types.ID(id), true
}
