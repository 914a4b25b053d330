package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cureverse/cureverse/internal/handler/channel"
	"github.com/cureverse/cureverse/internal/metrics"
	"github.com/cureverse/cureverse/internal/model/symptom"
	"github.com/cureverse/cureverse/internal/service/assistant"
	chatService "github.com/cureverse/cureverse/internal/service/chat"
)

func newRouter(m *metrics.Metrics) http.Handler {
	symptoms := symptom.NewMemoryStore(symptom.Seed())
	chatSvc := chatService.NewService()
	responder := channel.NewResponder(assistant.New(symptoms, chatSvc), m)
	return NewRouter(symptoms, chatSvc, responder, m)
}

func TestRoutes(t *testing.T) {
	r := newRouter(metrics.New())

	cases := map[string]int{
		"/api/health":       http.StatusOK,
		"/api/symptoms":     http.StatusOK,
		"/api/session/nope": http.StatusNotFound,
		"/metrics":          http.StatusOK,
		"/ws":               http.StatusBadRequest,
	}
	for path, want := range cases {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		assert.Equal(t, want, resp.Code, path)
	}
}

func TestMetricsRouteOptional(t *testing.T) {
	r := newRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
