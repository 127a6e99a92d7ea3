package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareIncrementsCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)

	InitMetrics()

	r := gin.New()
	r.Use(Middleware())
	r.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/test", "200"))

	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/test", "200"))
	if after != before+1 {
		t.Fatalf("expected counter to grow by 1, got %v -> %v", before, after)
	}
}

func TestRecorderCountsEvents(t *testing.T) {
	rec := NewRecorder()

	before := testutil.ToFloat64(orphanBlobsTotal)
	rec.OrphanBlob()
	if got := testutil.ToFloat64(orphanBlobsTotal); got != before+1 {
		t.Fatalf("expected orphan counter %v, got %v", before+1, got)
	}

	beforeOK := testutil.ToFloat64(uploadsTotal.WithLabelValues("pdf", "ok"))
	rec.UploadCompleted("pdf")
	if got := testutil.ToFloat64(uploadsTotal.WithLabelValues("pdf", "ok")); got != beforeOK+1 {
		t.Fatalf("expected upload counter %v, got %v", beforeOK+1, got)
	}
}

func TestRegisterExposesMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	InitMetrics()
	NewRecorder().Replaced()

	r := gin.New()
	Register(r, "/metrics")

	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "docshelf_replacements_total") {
		t.Fatalf("expected docshelf collectors in exposition")
	}
}
