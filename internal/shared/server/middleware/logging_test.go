package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestLoggingSkipsPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Logging())
	r.OPTIONS("/api/upload-resume", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/upload-resume", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestSessionIssuesAndEchoesID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Session())
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sessionId": SessionIDFromContext(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	issued := resp.Header().Get("X-Session-Id")
	if issued == "" {
		t.Fatal("expected X-Session-Id header to be issued")
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req2.Header.Set("X-Session-Id", issued)
	resp2 := httptest.NewRecorder()
	r.ServeHTTP(resp2, req2)

	if got := resp2.Header().Get("X-Session-Id"); got != issued {
		t.Fatalf("expected session id %q to be echoed, got %q", issued, got)
	}
}

func TestSessionRejectsMalformedID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Session())
	r.GET("/api/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Session-Id", "../../etc/passwd")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if got := resp.Header().Get("X-Session-Id"); got == "../../etc/passwd" || got == "" {
		t.Fatalf("expected a fresh session id, got %q", got)
	}
}
