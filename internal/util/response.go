package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Response struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

// Paging is the envelope metadata for pipeline-composed listings.
type Paging struct {
	TotalData   int64 `json:"total_data"`
	PerPage     int   `json:"per_page"`
	CurrentPage int   `json:"current_page"`
	TotalPage   int   `json:"total_page"`
}

type PagedResponse struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Paging  Paging      `json:"paging"`
	Message string      `json:"message"`
}

func Success(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Data:    data,
		Message: message,
	})
}

func Paged(c *gin.Context, data interface{}, paging Paging, message string) {
	c.JSON(http.StatusOK, PagedResponse{
		Code:    0,
		Data:    data,
		Paging:  paging,
		Message: message,
	})
}

// TotalPages derives the page count for a paging envelope.
func TotalPages(total int64, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	pages := int(total) / perPage
	if int(total)%perPage != 0 {
		pages++
	}
	return pages
}

func Error(c *gin.Context, code int, err interface{}) {
	msg := ""
	switch e := err.(type) {
	case string:
		msg = e
	case error:
		msg = e.Error()
	default:
		msg = "Internal Server Error"
	}

	zap.S().Errorf("API Error: %s", msg)

	c.JSON(code, Response{
		Code:    -1,
		Data:    nil,
		Message: msg,
	})
}
