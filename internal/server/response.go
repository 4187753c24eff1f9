package server

import (
	"errors"
	"net/http"

	"github.com/csdemo/siteview/internal/maps"
	"github.com/gin-gonic/gin"
)

// Response is the envelope of every JSON endpoint.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func fail(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Response{Code: code, Message: message})
}

func badRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, message)
}

func notFound(c *gin.Context, message string) {
	fail(c, http.StatusNotFound, message)
}

// lookupFailed maps registry errors to a response.
func lookupFailed(c *gin.Context, err error) {
	if errors.Is(err, maps.ErrUnknownMap) || errors.Is(err, maps.ErrSiteDisabled) {
		notFound(c, err.Error())
		return
	}
	fail(c, http.StatusInternalServerError, err.Error())
}
