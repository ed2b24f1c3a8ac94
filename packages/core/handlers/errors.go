package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"fantasy-doubles-api/middleware"
	"fantasy-doubles-api/packages/core/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// respondError writes a domain error with the status its code maps to.
func respondError(c *gin.Context, err error, fallback string) {
	code := apperrors.CodeOf(err)
	status := code.HTTPStatus()

	if status >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("code", string(code)).Msg(fallback)
		c.JSON(status, gin.H{
			"error":      fallback,
			"code":       code,
			"request_id": middleware.GetRequestID(c.Request.Context()),
		})
		return
	}

	body := gin.H{
		"error": err.Error(),
		"code":  code,
	}
	var e *apperrors.Error
	if errors.As(err, &e) && len(e.Metadata) > 0 {
		body["details"] = e.Metadata
	}
	c.JSON(status, body)
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// optionalUint parses an optional positive integer query parameter.
func optionalUint(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " parameter"})
		return nil, false
	}
	id := uint(v)
	return &id, true
}

func optionalInt(c *gin.Context, name string) (*int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " parameter"})
		return nil, false
	}
	return &v, true
}
