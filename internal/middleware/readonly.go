package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/sma-finance-mirror/pkg/errors"
	"github.com/noah-isme/sma-finance-mirror/pkg/response"
)

// ReadOnly rejects every method that could modify data under prefix. It is
// registered on the engine so unmatched routes are rejected too.
func ReadOnly(prefix string) gin.HandlerFunc {
	prefix = strings.TrimRight(prefix, "/")
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		path := c.Request.URL.Path
		if prefix != "" && path != prefix && !strings.HasPrefix(path, prefix+"/") {
			c.Next()
			return
		}
		c.Header("Allow", "GET, HEAD, OPTIONS")
		response.Error(c, appErrors.ErrReadOnly)
	}
}
