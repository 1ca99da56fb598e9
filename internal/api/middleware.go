package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"inventory-service/internal/service"
	"inventory-service/internal/util"

	"github.com/gin-gonic/gin"
)

// roleMiddleware carries the caller's role from the X-User-Role header into
// the request context. The role is always passed explicitly into services,
// never read from ambient state.
func roleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(roleKey, c.GetHeader("X-User-Role"))
		c.Next()
	}
}

// callerRole returns the role set by roleMiddleware
func callerRole(c *gin.Context) string {
	return c.GetString(roleKey)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

// bindProductForm binds the multipart product form and opens the optional
// image upload. Reports false if it already wrote an error response.
func bindProductForm(c *gin.Context) (*service.ProductInput, multipart.File, bool) {
	var input service.ProductInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return nil, nil, false
	}

	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return &input, nil, true
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid image upload",
			"details": err.Error(),
		})
		return nil, nil, false
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid image upload",
			"details": err.Error(),
		})
		return nil, nil, false
	}

	return &input, file, true
}

func readerOrNil(f multipart.File) io.Reader {
	if f == nil {
		return nil
	}
	return f
}
