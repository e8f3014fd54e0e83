package handler

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"linkedin-post-ai/internal/application/post"
	"linkedin-post-ai/internal/config"
	"linkedin-post-ai/internal/domain/entity"
	wfmodel "linkedin-post-ai/internal/workflow/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeCatalog struct {
	topics []string
	err    error
}

func (c *fakeCatalog) Topics(context.Context) ([]string, error) {
	return c.topics, c.err
}

type fakeGenerator struct {
	text  string
	err   error
	calls int
}

func (g *fakeGenerator) Generate(context.Context, entity.GenerationRequest) (entity.GeneratedPost, error) {
	g.calls++
	if g.err != nil {
		return entity.GeneratedPost{}, g.err
	}
	return entity.GeneratedPost{Text: g.text}, nil
}

// fakeChain 流式生成链，按块返回预置内容
type fakeChain struct {
	chunks []string
	err    error
	calls  int
}

func (f *fakeChain) Invoke(context.Context, *wfmodel.PostGenerateInput) (*wfmodel.PostGenerateOutput, error) {
	return nil, errors.New("not used")
}

func (f *fakeChain) Stream(context.Context, *wfmodel.PostGenerateInput) (*schema.StreamReader[*schema.Message], error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	msgs := make([]*schema.Message, 0, len(f.chunks))
	for _, c := range f.chunks {
		msgs = append(msgs, schema.AssistantMessage(c, nil))
	}
	return schema.StreamReaderFromArray(msgs), nil
}

// streamRecorder gin 的 Context.Stream 需要 http.CloseNotifier
type streamRecorder struct {
	*httptest.ResponseRecorder
}

func (streamRecorder) CloseNotify() <-chan bool {
	return make(chan bool)
}

func newTestFlow(cat *fakeCatalog, gen *fakeGenerator) *post.Flow {
	return post.NewFlow(cat, gen, post.NewPicker(rand.NewPCG(3, 4)), nil, []string{"Post between 8 and 10 AM."})
}

func newTestEngine(t *testing.T, cat *fakeCatalog, gen *fakeGenerator, streamChain *fakeChain) *gin.Engine {
	t.Helper()
	flow := newTestFlow(cat, gen)

	r := gin.New()
	tmpl, err := LoadTemplates()
	require.NoError(t, err)
	r.SetHTMLTemplate(tmpl)

	ph := NewPostHandler(flow)
	sh := NewStreamHandler(flow, post.NewGenerator(streamChain, nil, ""))
	page := NewPageHandler(flow, config.UIConfig{Title: "LinkedIn Post Generator", Subtitle: "Create engaging posts"})

	r.GET("/", page.Index)
	r.POST("/generate", page.Generate)
	r.GET("/v1/topics", ph.ListTopics)
	r.GET("/v1/options", ph.ListOptions)
	r.POST("/v1/posts/generate", ph.Generate)
	r.POST("/v1/posts/generate/stream", sh.GenerateStream)
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func postStream(r http.Handler, body string) *httptest.ResponseRecorder {
	w := streamRecorder{httptest.NewRecorder()}
	req := httptest.NewRequest(http.MethodPost, "/v1/posts/generate/stream", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w.ResponseRecorder
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	return w
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		ErrorCode string `json:"error_code"`
		Details   string `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestGeneratePostJSON(t *testing.T) {
	gen := &fakeGenerator{text: "5 tips to stay productive..."}
	r := newTestEngine(t, &fakeCatalog{topics: []string{"Productivity"}}, gen, nil)

	w := postJSON(r, "/v1/posts/generate", `{"topic":"Productivity","length":"Short","language":"English"}`)
	require.Equal(t, http.StatusOK, w.Code)

	env := decode(t, w)
	var data struct {
		Topic    string `json:"topic"`
		Length   string `json:"length"`
		Language string `json:"language"`
		Text     string `json:"text"`
		Tip      string `json:"tip"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, "Productivity", data.Topic)
	require.Equal(t, "Short", data.Length)
	require.Equal(t, "English", data.Language)
	require.Equal(t, "5 tips to stay productive...", data.Text)
	require.Equal(t, "Post between 8 and 10 AM.", data.Tip)
	require.Equal(t, 1, gen.calls)
}

func TestGeneratePostJSONErrors(t *testing.T) {
	cases := []struct {
		name     string
		catalog  *fakeCatalog
		gen      *fakeGenerator
		body     string
		status   int
		code     string
		genCalls int
	}{
		{
			name:    "missing field",
			catalog: &fakeCatalog{topics: []string{"Career"}},
			gen:     &fakeGenerator{text: "x"},
			body:    `{"topic":"Career","length":"Short"}`,
			status:  http.StatusBadRequest,
			code:    "1001",
		},
		{
			name:    "unknown length",
			catalog: &fakeCatalog{topics: []string{"Career"}},
			gen:     &fakeGenerator{text: "x"},
			body:    `{"topic":"Career","length":"Huge","language":"English"}`,
			status:  http.StatusBadRequest,
			code:    "1001",
		},
		{
			name:    "unknown topic",
			catalog: &fakeCatalog{topics: []string{"Career"}},
			gen:     &fakeGenerator{text: "x"},
			body:    `{"topic":"Cooking","length":"Short","language":"English"}`,
			status:  http.StatusBadRequest,
		},
		{
			name:    "empty catalog",
			catalog: &fakeCatalog{},
			gen:     &fakeGenerator{text: "x"},
			body:    `{"topic":"Career","length":"Short","language":"English"}`,
			status:  http.StatusServiceUnavailable,
		},
		{
			name:     "generation failure",
			catalog:  &fakeCatalog{topics: []string{"Career"}},
			gen:      &fakeGenerator{err: errors.New("upstream timeout")},
			body:     `{"topic":"Career","length":"Long","language":"Hinglish"}`,
			status:   http.StatusBadGateway,
			genCalls: 1,
		},
		{
			name:    "catalog unavailable",
			catalog: &fakeCatalog{err: errors.New("db down")},
			gen:     &fakeGenerator{text: "x"},
			body:    `{"topic":"Career","length":"Short","language":"English"}`,
			status:  http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestEngine(t, tc.catalog, tc.gen, nil)
			w := postJSON(r, "/v1/posts/generate", tc.body)
			require.Equal(t, tc.status, w.Code, w.Body.String())

			env := decode(t, w)
			require.NotNil(t, env.Error)
			if tc.code != "" {
				require.Equal(t, tc.code, env.Error.ErrorCode)
			}
			require.Equal(t, tc.genCalls, tc.gen.calls)
		})
	}
}

func TestGenerationFailureCarriesNotice(t *testing.T) {
	r := newTestEngine(t, &fakeCatalog{topics: []string{"Career"}}, &fakeGenerator{err: errors.New("boom")}, nil)
	w := postJSON(r, "/v1/posts/generate", `{"topic":"Career","length":"Short","language":"English"}`)
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Equal(t, post.FailureNotice, decode(t, w).Error.Details)
}

func TestListTopicsAndOptions(t *testing.T) {
	r := newTestEngine(t, &fakeCatalog{topics: []string{"Career", "Scams"}}, &fakeGenerator{}, nil)

	w := get(r, "/v1/topics")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"topics":["Career","Scams"]}`, string(decode(t, w).Data))

	w = get(r, "/v1/options")
	require.Equal(t, http.StatusOK, w.Code)
	body := string(decode(t, w).Data)
	for _, v := range []string{"Short", "Medium", "Long", "English", "Hinglish"} {
		require.Contains(t, body, `"`+v+`"`)
	}
}

func TestListTopicsEmptyCatalogIsEmptyArray(t *testing.T) {
	r := newTestEngine(t, &fakeCatalog{}, &fakeGenerator{}, nil)
	w := get(r, "/v1/topics")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"topics":[]}`, string(decode(t, w).Data))
}

func TestGenerateStream(t *testing.T) {
	streamer := &fakeChain{chunks: []string{"Hustle ", "", "smarter."}}
	r := newTestEngine(t, &fakeCatalog{topics: []string{"Productivity"}}, &fakeGenerator{}, streamer)

	w := postStream(r, `{"topic":"Productivity","length":"Medium","language":"English"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	require.Equal(t, 2, strings.Count(body, "event:content"))
	require.Contains(t, body, `"chunk":"Hustle "`)
	require.Contains(t, body, "event:done")
	require.Contains(t, body, `"text":"Hustle smarter."`)
	require.NotContains(t, body, "event:error")
}

func TestGenerateStreamCleansFencedOutput(t *testing.T) {
	streamer := &fakeChain{chunks: []string{"```\n", "Hello world", "\n```"}}
	r := newTestEngine(t, &fakeCatalog{topics: []string{"Career"}}, &fakeGenerator{}, streamer)

	w := postStream(r, `{"topic":"Career","length":"Short","language":"English"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"text":"Hello world"`)
	require.NotContains(t, w.Body.String(), "event:error")
}

func TestGenerateStreamFailures(t *testing.T) {
	t.Run("stream cannot start", func(t *testing.T) {
		streamer := &fakeChain{err: errors.New("upstream down")}
		r := newTestEngine(t, &fakeCatalog{topics: []string{"Career"}}, &fakeGenerator{}, streamer)
		w := postStream(r, `{"topic":"Career","length":"Short","language":"English"}`)
		require.Contains(t, w.Body.String(), "event:error")
		require.Contains(t, w.Body.String(), post.FailureNotice)
	})

	t.Run("blank stream", func(t *testing.T) {
		streamer := &fakeChain{chunks: []string{"  "}}
		r := newTestEngine(t, &fakeCatalog{topics: []string{"Career"}}, &fakeGenerator{}, streamer)
		w := postStream(r, `{"topic":"Career","length":"Short","language":"English"}`)
		require.Contains(t, w.Body.String(), "event:error")
		require.NotContains(t, w.Body.String(), "event:done")
	})

	t.Run("invalid request never streams", func(t *testing.T) {
		streamer := &fakeChain{chunks: []string{"x"}}
		r := newTestEngine(t, &fakeCatalog{topics: []string{"Career"}}, &fakeGenerator{}, streamer)
		w := postStream(r, `{"topic":"Cooking","length":"Short","language":"English"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Zero(t, streamer.calls)
	})
}

func TestPageIndex(t *testing.T) {
	r := newTestEngine(t, &fakeCatalog{topics: []string{"Career", "Productivity"}}, &fakeGenerator{}, nil)

	w := get(r, "/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, "LinkedIn Post Generator")
	require.Contains(t, body, `<option value="Productivity"`)
	require.Contains(t, body, "Did you know?")
	require.Contains(t, body, entity.LengthShort.Hint())
	require.NotContains(t, body, "disabled>Generate Post")
}

func TestPageIndexEmptyCatalogDisablesSubmit(t *testing.T) {
	r := newTestEngine(t, &fakeCatalog{}, &fakeGenerator{}, nil)

	w := get(r, "/")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), post.NoTopicsNotice)
	require.Contains(t, w.Body.String(), `<button type="submit" disabled>`)
}

func TestPageIndexCatalogErrorIsNotEmptyCatalog(t *testing.T) {
	r := newTestEngine(t, &fakeCatalog{err: errors.New("db down")}, &fakeGenerator{}, nil)

	w := get(r, "/")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), post.NoTopicsNotice)
	require.Equal(t, 1, strings.Count(w.Body.String(), `class="notice"`))
}

func TestPageGenerateDisplaysPost(t *testing.T) {
	gen := &fakeGenerator{text: "Consistency beats intensity."}
	r := newTestEngine(t, &fakeCatalog{topics: []string{"Productivity"}}, gen, nil)

	w := postForm(r, "/generate", url.Values{"topic": {"Productivity"}, "length": {"Long"}, "language": {"Hinglish"}})
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, "Consistency beats intensity.")
	require.Contains(t, body, `<textarea id="copy" class="copy" rows="8" readonly>Consistency beats intensity.</textarea>`)
	require.Contains(t, body, "Pro tip:")
	require.Contains(t, body, `<option value="Long" selected>`)
	require.Contains(t, body, entity.LanguageHinglish.Hint())
	require.Equal(t, 1, gen.calls)
}

func TestPageGenerateFailureShowsNotice(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("rate limited upstream")}
	r := newTestEngine(t, &fakeCatalog{topics: []string{"Career"}}, gen, nil)

	w := postForm(r, "/generate", url.Values{"topic": {"Career"}, "length": {"Short"}, "language": {"English"}})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), html.EscapeString(post.FailureNotice))
	require.NotContains(t, w.Body.String(), `class="post"`)
}

func TestPageGenerateRejectsUnknownTopic(t *testing.T) {
	gen := &fakeGenerator{text: "x"}
	r := newTestEngine(t, &fakeCatalog{topics: []string{"Career"}}, gen, nil)

	w := postForm(r, "/generate", url.Values{"topic": {"Cooking"}, "length": {"Short"}, "language": {"English"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Cooking")
	require.Zero(t, gen.calls)
}

func TestPageGenerateEmptyCatalogDoesNotCallGenerator(t *testing.T) {
	gen := &fakeGenerator{text: "x"}
	r := newTestEngine(t, &fakeCatalog{}, gen, nil)

	w := postForm(r, "/generate", url.Values{"topic": {"Career"}, "length": {"Short"}, "language": {"English"}})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), post.NoTopicsNotice)
	require.Zero(t, gen.calls)
}

func TestHealthWithoutBackends(t *testing.T) {
	h := NewHealthHandler(nil, nil, "1.2.3")
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/live", h.Live)

	w := get(r, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok","version":"1.2.3"}`, w.Body.String())

	w = get(r, "/ready")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"disabled"`)

	require.Equal(t, http.StatusOK, get(r, "/live").Code)
}
