package minipress

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHandleRobots(t *testing.T) {
	for _, configured := range []string{"http://localhost:3000", "https://example.com/"} {
		app := &App{Config: Config{URL: configured}}

		e := echo.New()
		req := httptest.NewRequest("GET", "/robots.txt", nil)
		rec := httptest.NewRecorder()
		if err := app.handleRobots(e.NewContext(req, rec)); err != nil {
			t.Fatalf("handleRobots failed: %v", err)
		}

		body := rec.Body.String()
		want := strings.TrimRight(configured, "/") + "/sitemap.xml"
		if !strings.Contains(body, "Sitemap: "+want+"\n") {
			t.Errorf("URL %q: robots body %q missing sitemap line %q", configured, body, want)
		}
	}
}
