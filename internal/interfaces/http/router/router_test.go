package router

import (
	"context"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"linkedin-post-ai/internal/application/post"
	"linkedin-post-ai/internal/config"
	"linkedin-post-ai/internal/domain/entity"
	"linkedin-post-ai/internal/interfaces/http/handler"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticCatalog []string

func (c staticCatalog) Topics(context.Context) ([]string, error) { return c, nil }

type echoGenerator struct{}

func (echoGenerator) Generate(_ context.Context, req entity.GenerationRequest) (entity.GeneratedPost, error) {
	return entity.GeneratedPost{Text: "A post about " + req.Topic}, nil
}

type allowN struct {
	n    int
	seen int
}

func (l *allowN) Key(ip, path string) string { return ip + path }

func (l *allowN) Allow(context.Context, string, int, time.Duration) (bool, error) {
	l.seen++
	return l.seen <= l.n, nil
}

func newTestRouter(t *testing.T, cfg *config.Config, limiter *allowN) *Router {
	t.Helper()
	flow := post.NewFlow(staticCatalog{"Career"}, echoGenerator{}, nil, nil, nil)
	handlers := &RouterHandlers{
		Health: handler.NewHealthHandler(nil, nil, "test"),
		Post:   handler.NewPostHandler(flow),
		Stream: handler.NewStreamHandler(flow, nil),
		Page:   handler.NewPageHandler(flow, cfg.UI),
	}
	if limiter != nil {
		handlers.RateLimiter = limiter
	}
	r, err := NewWithDeps(cfg, handlers)
	require.NoError(t, err)
	return r
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "linkedin-post-ai"
	cfg.UI.Title = "LinkedIn Post Generator"
	cfg.Observability.Metrics.Enabled = true
	cfg.Observability.Metrics.Path = "/metrics"
	return cfg
}

func serve(r *Router, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.Engine().ServeHTTP(w, req)
	return w
}

func TestRoutesRegistered(t *testing.T) {
	r := newTestRouter(t, testConfig(), nil)

	for _, path := range []string{"/health", "/ready", "/live", "/metrics", "/", "/v1/topics", "/v1/options"} {
		w := serve(r, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code, path)
	}

	w := serve(r, http.MethodPost, "/v1/posts/generate", `{"topic":"Career","length":"Short","language":"English"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "A post about Career")
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestMetricsRouteDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Observability.Metrics.Enabled = false
	r := newTestRouter(t, cfg, nil)
	require.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/metrics", "").Code)
}

func TestGenerateRoutesAreRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimit.Enabled = true
	cfg.Security.RateLimit.Requests = 1
	cfg.Security.RateLimit.Window = time.Minute
	r := newTestRouter(t, cfg, &allowN{n: 1})

	body := `{"topic":"Career","length":"Short","language":"English"}`
	require.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/v1/posts/generate", body).Code)
	require.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodPost, "/v1/posts/generate", body).Code)

	// 只读接口不受限流影响
	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/v1/topics", "").Code)
}

func TestPageGenerateRateLimitRendersPage(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimit.Enabled = true
	cfg.Security.RateLimit.Requests = 1
	cfg.Security.RateLimit.Window = time.Minute
	r := newTestRouter(t, cfg, &allowN{n: 1})

	form := url.Values{"topic": {"Career"}, "length": {"Short"}, "language": {"English"}}.Encode()
	submit := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(form))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		r.Engine().ServeHTTP(w, req)
		return w
	}

	require.Equal(t, http.StatusOK, submit().Code)

	w := submit()
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/html")
	require.Contains(t, w.Body.String(), html.EscapeString(handler.TooManyRequestsNotice))
	require.Contains(t, w.Body.String(), `<option value="Career" selected>`)
	require.NotContains(t, w.Body.String(), "rate limit exceeded")
}
