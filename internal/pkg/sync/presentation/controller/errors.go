package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatsync/internal/pkg/sync/application/domain"
)

// respondError maps engine errors onto HTTP statuses for the UI facade.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrTransport):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrEngineClosed):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
