package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-finance-mirror/internal/middleware"
	"github.com/noah-isme/sma-finance-mirror/internal/models"
	"github.com/noah-isme/sma-finance-mirror/pkg/response"
)

// respond writes data with the collected response metadata.
func respond(c *gin.Context, data interface{}, pagination *models.Pagination, cacheHit bool) {
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	response.JSON(c, http.StatusOK, data, pagination, meta)
}
