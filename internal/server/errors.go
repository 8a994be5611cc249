package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forestar-be/forestar-facturation/internal/api"
	"github.com/forestar-be/forestar-facturation/internal/resolver"
	"github.com/forestar-be/forestar-facturation/pkg/models"
)

// ErrNotMultiple is returned when resolving an invoice that has a single match.
var ErrNotMultiple = errors.New("invoice has no competing matches")

// errorStatus maps an error to the HTTP status returned to the UI.
func errorStatus(err error) int {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotMultiple):
		return http.StatusUnprocessableEntity
	case resolver.IsPartial(err):
		return http.StatusConflict
	case errors.Is(err, api.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, api.ErrUnauthorized), errors.Is(err, api.ErrTransport), errors.Is(err, api.ErrRequestFailed), errors.Is(err, api.ErrInvalidResponse):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := errorStatus(err)
	log := requestLogger(c)
	log.Warn().Err(err).Int("status", status).Msg("Request failed")

	body := gin.H{"error": err.Error()}
	if resolver.IsPartial(err) {
		body["partial"] = true
	}
	c.JSON(status, body)
}
