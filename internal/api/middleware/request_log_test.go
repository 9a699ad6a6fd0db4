package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestRequestLog_WritesErrorResponse(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLog(zerolog.New(&buf)))
	e.GET("/boom", func(c echo.Context) error {
		c.Set(UserIDKey, "u1")
		return echo.NewHTTPError(http.StatusTeapot, "nope")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", rec.Code)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected one json log line, got %q: %v", buf.String(), err)
	}
	if line["level"] != "warn" || line["status"] != float64(http.StatusTeapot) || line["user_id"] != "u1" {
		t.Fatalf("unexpected log line: %v", line)
	}
	if line["path"] != "/boom" || line["method"] != http.MethodGet {
		t.Fatalf("unexpected log line: %v", line)
	}
}

func TestRequestLog_Success(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLog(zerolog.New(&buf)))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("invalid log line: %v", err)
	}
	if line["level"] != "info" || line["status"] != float64(http.StatusNoContent) {
		t.Fatalf("unexpected log line: %v", line)
	}
	if _, ok := line["user_id"]; ok {
		t.Fatalf("anonymous request should not log user_id")
	}
}
