package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r)
	return r
}

func TestRunResearch_StreamsEvents(t *testing.T) {
	svc, _, _ := quantumService(t, 0)
	r := newRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/run-research?topic="+url.QueryEscape("quantum computing"), nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))

	want := strings.Join([]string{
		`data: {"type": "log", "content": "\ud83d\udd75\ufe0f Researcher: Searching Tavily for 'quantum computing'..."}`,
		`data: {"type": "log", "content": "\u2705 Researcher: Latest data retrieved."}`,
		`data: {"type": "log", "content": "\u270d\ufe0f Writer: Llama 3.3 is drafting the report..."}`,
		`data: {"type": "log", "content": "\u2705 Writer: Report generated."}`,
		`data: {"type": "report", "content": "## Report\n..."}`,
		`data: [DONE]`,
	}, "\n\n") + "\n\n"
	assert.Equal(t, want, w.Body.String())
}

func TestRunResearch_EmptyTopicIsAccepted(t *testing.T) {
	svc, _, _ := quantumService(t, 0)
	r := newRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/run-research?topic=", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `Searching Tavily for ''...`)
	assert.True(t, strings.HasSuffix(w.Body.String(), "data: [DONE]\n\n"))
}

func TestRunResearch_MissingTopic(t *testing.T) {
	svc, searcher, _ := quantumService(t, 0)
	r := newRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/run-research", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "missing required query parameter: topic")
	assert.Zero(t, searcher.calls.Load())
}

func TestHealth(t *testing.T) {
	svc := newTestService(t, &fakeSearcher{}, nil, 0)
	r := newRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["search"])
	assert.Equal(t, false, body["generation"])
}
