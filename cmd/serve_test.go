package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cageside/picks-cli/internal/aggregate"
	"github.com/cageside/picks-cli/internal/bot"
	"github.com/cageside/picks-cli/internal/classify"
	"github.com/cageside/picks-cli/internal/cost"
	"github.com/cageside/picks-cli/internal/match"
	"github.com/cageside/picks-cli/internal/store"
	"github.com/cageside/picks-cli/pkg/anthropic"
)

// staticClient answers every CreateMessage with the same text.
type staticClient struct {
	text string
}

func (c *staticClient) CreateMessage(_ context.Context, _ anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: c.text}},
		Usage:   anthropic.TokenUsage{InputTokens: 100, OutputTokens: 50},
	}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	b := bot.New(bot.Config{
		Classifier:  classify.New(st),
		Optimizer:   aggregate.New(st, match.New(0), aggregate.DefaultThresholds()),
		Client:      &staticClient{text: "canned answer"},
		Calculator:  cost.NewCalculator(cost.DefaultRates()),
		Model:       "claude-sonnet-4-5-20250929",
		CallTimeout: 5 * time.Second,
		RPS:         100,
	})
	return newRouter(b)
}

func TestServe_Health(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServe_Ask(t *testing.T) {
	router := newTestRouter(t)

	body := strings.NewReader(`{"question":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/ask", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "canned answer")
	assert.Contains(t, rec.Body.String(), `"query_type":"general"`)
}

func TestServe_AskBadRequest(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{`},
		{name: "missing question", body: `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
