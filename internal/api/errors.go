package api

import (
	"errors"
	"net/http"

	"github.com/edukita/gametrack/internal/apperr"
	"github.com/edukita/gametrack/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Fail maps the core's error taxonomy onto HTTP status codes.
func Fail(c *gin.Context, err error) {
	var notFound *apperr.NotFoundError
	var invalid *apperr.ValidationError
	var conflict *apperr.ConflictError

	switch {
	case errors.As(err, &notFound), errors.Is(err, gorm.ErrRecordNotFound):
		util.Error(c, http.StatusNotFound, err)
	case errors.As(err, &invalid):
		util.Error(c, http.StatusBadRequest, err)
	case errors.As(err, &conflict):
		util.Error(c, http.StatusConflict, err)
	default:
		util.Error(c, http.StatusInternalServerError, err)
	}
}
