package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scolaria/class_admin/internal/model"
)

// respondError maps the typed failure taxonomy onto HTTP statuses so the
// client can map them back.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, model.ErrInvalidRole):
		status = http.StatusForbidden
	case errors.Is(err, model.ErrValidation):
		status = http.StatusUnprocessableEntity
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
