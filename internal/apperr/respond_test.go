package apperr

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abduss/docshelf/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func newRespondRouter(err error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(logger.Middleware(zap.NewNop()))
	r.GET("/fail", func(c *gin.Context) {
		Respond(c, err, "failed to do the thing")
	})
	return r
}

func TestRespondHidesServerErrorDetails(t *testing.T) {
	r := newRespondRouter(Wrap(KindCatalog, "insert file", errors.New("pq: password leaked")))

	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	req.Header.Set(logger.CorrelationIDHeader, "req-42")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	body := rr.Body.String()
	if strings.Contains(body, "password") {
		t.Fatalf("driver detail leaked: %s", body)
	}
	if !strings.Contains(body, `"correlation_id":"req-42"`) {
		t.Fatalf("expected correlation id in body: %s", body)
	}
	if !strings.Contains(body, `"code":"CATALOG_ERROR"`) {
		t.Fatalf("expected catalog code: %s", body)
	}
}

func TestRespondClientErrorKeepsMessage(t *testing.T) {
	r := newRespondRouter(New(KindNotFound, "file not found"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/fail", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"error":"file not found"`) || strings.Contains(body, "correlation_id") {
		t.Fatalf("unexpected body: %s", body)
	}
}
