// Package ginpager exposes pager endpoints as gin handlers.
package ginpager

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Alp4ka/pager"
)

type (
	// ErrorBody is the JSON body of a failed list request.
	ErrorBody struct {
		Success bool        `json:"success"`
		Error   ErrorDetail `json:"error"`
	}

	ErrorDetail struct {
		// Field is the offending query parameter, empty for server errors.
		Field   string `json:"field,omitempty"`
		Message string `json:"message"`
	}
)

// Handler serves ep over exec. The query string is the only input: page,
// limit, sortBy, cursor, direction and the endpoint's filter parameters.
func Handler[T any](ep *pager.Endpoint[T], exec pager.Executor[T], log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := ep.List(c.Request.Context(), exec, c.Request.URL.Query())
		if err != nil {
			AbortWithError(c, log, err)
			return
		}

		c.JSON(http.StatusOK, res)
	}
}

// AbortWithError answers input errors with 400 and the offending parameter.
// Anything else is logged and answered with a generic 500, or 504 when the
// request deadline expired.
func AbortWithError(c *gin.Context, log logrus.FieldLogger, err error) {
	var inputErr *pager.InputError
	if errors.As(err, &inputErr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody{
			Error: ErrorDetail{Field: inputErr.Field, Message: inputErr.Message},
		})
		return
	}

	entry := log.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
		"query":  c.Request.URL.RawQuery,
	})

	switch {
	case errors.Is(err, context.Canceled):
		// Client went away, nobody reads the response.
		entry.Debug("list request canceled")
		c.Abort()
	case errors.Is(err, context.DeadlineExceeded):
		entry.Warn("list request timed out")
		c.AbortWithStatusJSON(http.StatusGatewayTimeout, ErrorBody{Error: ErrorDetail{Message: "request timed out"}})
	default:
		entry.Error("list request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorBody{Error: ErrorDetail{Message: "internal error"}})
	}
}

// Logger logs one line per request.
func Logger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		})

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request served")
		case status >= http.StatusBadRequest:
			entry.Warn("request served")
		default:
			entry.Info("request served")
		}
	}
}

// Timeout bounds the request context by d. Executors observe the deadline and
// AbortWithError turns it into 504. A non-positive d disables the bound.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
