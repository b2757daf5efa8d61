package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-finance-mirror/internal/models"
	"github.com/noah-isme/sma-finance-mirror/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	router := gin.New()
	router.Use(ReadOnly("/api/v1"))
	router.GET("/api/v1/students", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/webhook", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	cases := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/v1/students", http.StatusOK},
		{http.MethodPost, "/api/v1/students", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/api/v1/students/a1", http.StatusMethodNotAllowed},
		{http.MethodPatch, "/api/v1", http.StatusMethodNotAllowed},
		{http.MethodPost, "/webhook", http.StatusNoContent},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.status, rec.Code, tc.method+" "+tc.path)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/students/a1", nil))
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "READ_ONLY", body.Error.Code)
	assert.Equal(t, "GET, HEAD, OPTIONS", rec.Header().Get("Allow"))
}

func TestResponseMeta(t *testing.T) {
	router := gin.New()
	router.Use(WithResponseMeta())
	var meta map[string]interface{}
	router.GET("/", func(c *gin.Context) {
		SetCacheHit(c, true)
		SetSnapshotVersion(c, 7)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, meta)
	assert.Equal(t, true, meta[cacheHitKey])
	assert.Equal(t, int64(7), meta[snapshotVersionKey])
	assert.Contains(t, meta, "processing_time_ms")
}

func TestMetricsObservesRequests(t *testing.T) {
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics))
	router.GET("/ping", func(c *gin.Context) {
		time.Sleep(time.Millisecond)
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, uint64(1), metrics.Snapshot().RequestsTotal)
}

func TestRouteLabelUsesTemplate(t *testing.T) {
	router := gin.New()
	var labels []string
	capture := func(c *gin.Context) {
		labels = append(labels, routeLabel(c))
		c.Status(http.StatusOK)
	}
	router.GET("/students/:id", capture)
	router.NoRoute(capture)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/students/a1", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/wp-admin/x", nil))

	assert.Equal(t, []string{"/students/:id", unmatchedRoute}, labels)
}

type versionSource struct{ version int64 }

func (v versionSource) Snapshot() *models.Snapshot {
	snap := models.NewSnapshot()
	snap.Version = v.version
	return snap
}

func TestSnapshotMetaStampsVersion(t *testing.T) {
	router := gin.New()
	router.Use(WithResponseMeta(), SnapshotMeta(versionSource{version: 12}))
	var meta map[string]interface{}
	router.GET("/", func(c *gin.Context) {
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, int64(12), meta[snapshotVersionKey])
}
