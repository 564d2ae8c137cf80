package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/affordableaudits/audit-api/internal/domain/audit"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return NewClientWithConfig(cfg, "gpt-4o-mini", "", 5*time.Second)
}

func completionJSON(content string) string {
	resp := map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func sampleResults() (domain.ScanResult, domain.ScanResult) {
	structural := domain.ScanResult{
		Tool:   domain.ToolSlither,
		Status: domain.ScanFindings,
		Report: map[string]any{"results": map[string]any{"detectors": []any{map[string]any{"check": "tx-origin"}}}},
	}
	symbolic := domain.ScanResult{
		Tool:   domain.ToolMythril,
		Status: domain.ScanClean,
		Report: map[string]any{},
	}
	return structural, symbolic
}

func TestSummarizeMergesBothResults(t *testing.T) {
	var gotBody []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionJSON("## Summary\nOne finding: tx-origin misuse."))
	})

	structural, symbolic := sampleResults()
	text, err := c.Summarize(context.Background(), structural, symbolic)
	require.NoError(t, err)
	assert.Contains(t, text, "tx-origin")

	var req struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		MaxTokens int `json:"max_tokens"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &req))
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Contains(t, req.Messages[1].Content, `"slither"`)
	assert.Contains(t, req.Messages[1].Content, `"mythril"`)
	assert.Equal(t, 800, req.MaxTokens)
}

func TestSummarizeNoChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"chatcmpl-test","object":"chat.completion","choices":[]}`)
	})

	structural, symbolic := sampleResults()
	_, err := c.Summarize(context.Background(), structural, symbolic)
	require.ErrorIs(t, err, domain.ErrSynthesisResponse)
}

func TestSummarizeBlankContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionJSON("   \n  "))
	})

	structural, symbolic := sampleResults()
	_, err := c.Summarize(context.Background(), structural, symbolic)
	require.ErrorIs(t, err, domain.ErrSynthesisResponse)
}

func TestSummarizeTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		io.WriteString(w, completionJSON("too late"))
	})
	c.Timeout = 100 * time.Millisecond

	structural, symbolic := sampleResults()
	_, err := c.Summarize(context.Background(), structural, symbolic)
	require.ErrorIs(t, err, domain.ErrSynthesisTimeout)
}
