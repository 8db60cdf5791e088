package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/parceltrack/internal/domain/errors"
	"github.com/polkiloo/parceltrack/internal/server/http/dto"
	"github.com/polkiloo/parceltrack/internal/server/http/middleware"
)

// CurrentUserID extracts authenticated user identifier from context.
func CurrentUserID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

func writeMessage(c *gin.Context, status int, message string) {
	c.JSON(status, dto.MessageResponse{Message: message})
}

// writeError maps domain errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		writeMessage(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domainErrors.ErrConflict), errors.Is(err, domainErrors.ErrInvalidArgument):
		writeMessage(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		writeMessage(c, http.StatusUnauthorized, err.Error())
	default:
		_ = c.Error(err)
		writeMessage(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		writeMessage(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func pageQuery(c *gin.Context) (int, bool) {
	raw := c.DefaultQuery("page", "1")
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		writeMessage(c, http.StatusBadRequest, "invalid page")
		return 0, false
	}
	return page, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeMessage(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
