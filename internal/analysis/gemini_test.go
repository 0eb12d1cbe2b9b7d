package analysis

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sipwatch/sipwatch-bot/internal/outcome"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidateResponse(parts ...string) map[string]interface{} {
	var p []map[string]string
	for _, text := range parts {
		p = append(p, map[string]string{"text": text})
	}
	return map[string]interface{}{
		"candidates": []map[string]interface{}{{
			"content":      map[string]interface{}{"role": "model", "parts": p},
			"finishReason": "STOP",
		}},
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("- news line", "--- r/wine ---\n- post (Score: 3)")

	assert.Contains(t, prompt, "24/7 beverage industry watchdog")
	assert.Contains(t, prompt, "Emerging Trends")
	assert.Contains(t, prompt, "Competitor Moves")
	assert.Contains(t, prompt, "Viral Sentiments")
	assert.Contains(t, prompt, "Sales/Forecasting implications")
	assert.Contains(t, prompt, "Watchlist")
	assert.Contains(t, prompt, "=== INDUSTRY NEWS ===\n- news line\n")
	assert.Contains(t, prompt, "=== SOCIAL SENTIMENT (REDDIT) ===\n--- r/wine ---\n- post (Score: 3)\n")
	assert.Less(t, strings.Index(prompt, newsSectionLabel), strings.Index(prompt, socialSectionLabel))
}

func TestGeminiClient_MissingKey(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	client := NewGeminiClient("", "gemini-1.5-flash", srv.URL, time.Second)
	report, err := client.Analyze(context.Background(), "news", "social")

	assert.Empty(t, report)
	assert.Equal(t, outcome.MissingCredential, outcome.KindOf(err))
	assert.Equal(t, Advisory, outcome.Render(report, err, "Gemini Analysis Failed"))
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func TestGeminiClient_EmptyInputs(t *testing.T) {
	const modelOutput = "  **Executive Summary**\n\nNothing to report.\n\nWatchlist: none  \n"

	var hits int32
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.Query().Get("key"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req geminiRequest
		require.NoError(t, json.Unmarshal(body, &req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 1)
		prompt = req.Contents[0].Parts[0].Text

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(candidateResponse(modelOutput))
	}))
	defer srv.Close()

	client := NewGeminiClient("test-key", "gemini-1.5-flash", srv.URL+"/v1beta", 5*time.Second)
	report, err := client.Analyze(context.Background(), "", "")

	require.NoError(t, err)
	assert.Equal(t, modelOutput, report)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Contains(t, prompt, newsSectionLabel)
	assert.Contains(t, prompt, socialSectionLabel)
	assert.Equal(t, BuildPrompt("", ""), prompt)
}

func TestGeminiClient_ConcatenatesParts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(candidateResponse("Part one. ", "Part two."))
	}))
	defer srv.Close()

	client := NewGeminiClient("test-key", "gemini-1.5-flash", srv.URL, 5*time.Second)
	report, err := client.Analyze(context.Background(), "news", "social")

	require.NoError(t, err)
	assert.Equal(t, "Part one. Part two.", report)
}

func TestGeminiClient_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		kind     outcome.Kind
		expected string
	}{
		{
			name:     "API error object",
			status:   http.StatusBadRequest,
			body:     `{"error":{"code":400,"message":"API key not valid.","status":"INVALID_ARGUMENT"}}`,
			kind:     outcome.NetworkFailure,
			expected: "Gemini Analysis Failed: API error 400 (INVALID_ARGUMENT): API key not valid.",
		},
		{
			name:     "Error status without body",
			status:   http.StatusServiceUnavailable,
			body:     ``,
			kind:     outcome.NetworkFailure,
			expected: "Gemini Analysis Failed: API returned status 503",
		},
		{
			name:     "No candidates",
			status:   http.StatusOK,
			body:     `{"candidates":[]}`,
			kind:     outcome.ParseFailure,
			expected: "Gemini Analysis Failed: no content in response",
		},
		{
			name:     "Blocked prompt",
			status:   http.StatusOK,
			body:     `{"promptFeedback":{"blockReason":"SAFETY"}}`,
			kind:     outcome.ParseFailure,
			expected: "Gemini Analysis Failed: prompt blocked: SAFETY",
		},
		{
			name:   "Malformed body",
			status: http.StatusOK,
			body:   `not json`,
			kind:   outcome.ParseFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewGeminiClient("test-key", "gemini-1.5-flash", srv.URL, 5*time.Second)
			report, err := client.Analyze(context.Background(), "news", "social")

			require.Error(t, err)
			assert.Empty(t, report)
			assert.Equal(t, tt.kind, outcome.KindOf(err))

			rendered := outcome.Render(report, err, "Gemini Analysis Failed")
			assert.True(t, strings.HasPrefix(rendered, "Gemini Analysis Failed: "), rendered)
			if tt.expected != "" {
				assert.Equal(t, tt.expected, rendered)
			}
		})
	}
}
