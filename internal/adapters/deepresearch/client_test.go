package deepresearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campaignforge/research-api/config"
	"github.com/campaignforge/research-api/internal/core"
	"github.com/campaignforge/research-api/internal/domain/research"
)

func providerConfig(baseURL string) config.ProviderConfig {
	cfg := config.ProviderConfig{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		ResearchModel:  "o4-mini-deep-research",
		TransformModel: "gpt-4.1-mini",
		RequestTimeout: 5 * time.Second,
		OutputTextPath: `output[?type=='message'][].content[?type=='output_text'][].text`,
		ToolTracePath:  `output[?type=='web_search_call']`,
	}
	return cfg
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{Config: providerConfig(server.URL)})
	require.NoError(t, err)
	return client
}

func TestNewClientValidation(t *testing.T) {
	t.Run("missing base URL", func(t *testing.T) {
		cfg := providerConfig("")
		_, err := NewClient(ClientOptions{Config: cfg})
		require.Error(t, err)
	})

	t.Run("missing API key", func(t *testing.T) {
		cfg := providerConfig("https://example.test")
		cfg.APIKey = ""
		_, err := NewClient(ClientOptions{Config: cfg})
		require.Error(t, err)
	})
}

func TestCreateResearchTask(t *testing.T) {
	t.Run("submits a background task with mapped tools", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/responses", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "o4-mini-deep-research", req["model"])
			assert.Equal(t, true, req["background"])
			tools, ok := req["tools"].([]any)
			require.True(t, ok)
			require.Len(t, tools, 1)
			assert.Equal(t, map[string]any{"type": "web_search_preview"}, tools[0])

			_, _ = w.Write([]byte(`{"id":"resp_123","status":"queued"}`))
		})

		result, err := client.CreateResearchTask(context.Background(), core.CreateResearchTaskParams{
			Prompt:       "research this",
			Capabilities: []string{"web_search"},
		})
		require.NoError(t, err)
		assert.Equal(t, "resp_123", result.TaskRef)
		assert.Equal(t, "queued", string(result.Status))
	})

	t.Run("rejects empty capability list without a request", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			t.Error("no request should reach the provider")
		})

		_, err := client.CreateResearchTask(context.Background(), core.CreateResearchTaskParams{
			Prompt: "research this",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "capability list")
	})

	t.Run("unknown create status maps to pending", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"resp_123","status":"validating"}`))
		})

		result, err := client.CreateResearchTask(context.Background(), core.CreateResearchTaskParams{
			Prompt:       "research this",
			Capabilities: []string{"web_search"},
		})
		require.NoError(t, err)
		assert.Equal(t, "pending", string(result.Status))
	})

	t.Run("missing task reference is an error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"queued"}`))
		})

		_, err := client.CreateResearchTask(context.Background(), core.CreateResearchTaskParams{
			Prompt:       "research this",
			Capabilities: []string{"web_search"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no task reference")
	})

	t.Run("provider error status surfaces", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
		})

		_, err := client.CreateResearchTask(context.Background(), core.CreateResearchTaskParams{
			Prompt:       "research this",
			Capabilities: []string{"web_search"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "provider returned 500")
	})
}

func TestGetResearchTask(t *testing.T) {
	t.Run("completed task extracts output and trace", func(t *testing.T) {
		payload := `{
			"id": "resp_123",
			"status": "completed",
			"output": [
				{"type": "web_search_call", "action": {"query": "hiking trends 2026", "url": "https://example.test/a"}},
				{"type": "message", "content": [{"type": "output_text", "text": "the research prose"}]}
			]
		}`
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/responses/resp_123", r.URL.Path)
			_, _ = w.Write([]byte(payload))
		})

		snap, err := client.GetResearchTask(context.Background(), "resp_123")
		require.NoError(t, err)
		assert.Equal(t, research.SnapshotCompleted, snap.State)
		assert.Equal(t, "the research prose", snap.OutputText)
		require.Len(t, snap.ToolTrace, 1)
		assert.Equal(t, "web_search_call", snap.ToolTrace[0].Kind)
		assert.Equal(t, "hiking trends 2026", snap.ToolTrace[0].Query)
		assert.Equal(t, "https://example.test/a", snap.ToolTrace[0].Detail)
	})

	t.Run("multi-part message output joins with newlines", func(t *testing.T) {
		payload := `{
			"id": "resp_123",
			"status": "completed",
			"output": [
				{"type": "reasoning", "summary": []},
				{"type": "message", "content": [{"type": "output_text", "text": "part one"}]},
				{"type": "message", "content": [
					{"type": "refusal", "refusal": "n/a"},
					{"type": "output_text", "text": "part two"}
				]}
			]
		}`
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(payload))
		})

		snap, err := client.GetResearchTask(context.Background(), "resp_123")
		require.NoError(t, err)
		assert.Equal(t, "part one\npart two", snap.OutputText)
	})

	t.Run("default extraction path matches the env default", func(t *testing.T) {
		// Guards against the config default and the tests drifting apart.
		var cfg config.ProviderConfig
		field, ok := reflect.TypeOf(cfg).FieldByName("OutputTextPath")
		require.True(t, ok)
		assert.Equal(t, providerConfig("").OutputTextPath, field.Tag.Get("envDefault"))
	})

	t.Run("output_text convenience field wins", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"resp_123","status":"completed","output_text":"short form","output":[]}`))
		})

		snap, err := client.GetResearchTask(context.Background(), "resp_123")
		require.NoError(t, err)
		assert.Equal(t, "short form", snap.OutputText)
	})

	t.Run("404 maps to ErrTaskNotFound", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := client.GetResearchTask(context.Background(), "resp_gone")
		require.ErrorIs(t, err, core.ErrTaskNotFound)
	})

	t.Run("cancelled and expired count as failed", func(t *testing.T) {
		for _, status := range []string{"failed", "cancelled", "expired", "incomplete"} {
			t.Run(status, func(t *testing.T) {
				client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
					_, _ = w.Write([]byte(`{"id":"resp_123","status":"` + status + `","error":{"message":"stopped"}}`))
				})

				snap, err := client.GetResearchTask(context.Background(), "resp_123")
				require.NoError(t, err)
				assert.Equal(t, research.SnapshotFailed, snap.State)
				assert.Equal(t, "stopped", snap.Error)
			})
		}
	})

	t.Run("unknown status passes through", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"resp_123","status":"paused"}`))
		})

		snap, err := client.GetResearchTask(context.Background(), "resp_123")
		require.NoError(t, err)
		assert.Equal(t, research.SnapshotState("paused"), snap.State)
	})

	t.Run("empty task ref rejected", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			t.Error("no request should reach the provider")
		})

		_, err := client.GetResearchTask(context.Background(), "")
		require.Error(t, err)
	})
}

func TestTransformText(t *testing.T) {
	t.Run("synchronous call against the transform model", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "gpt-4.1-mini", req["model"])
			_, nope := req["background"]
			assert.False(t, nope)

			_, _ = w.Write([]byte(`{"id":"resp_t","status":"completed","output_text":"{\"a\":1}"}`))
		})

		text, err := client.TransformText(context.Background(), "structure this")
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, text)
	})

	t.Run("error message surfaces", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"resp_t","status":"failed","error":{"message":"content filtered"}}`))
		})

		_, err := client.TransformText(context.Background(), "structure this")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "content filtered")
	})

	t.Run("empty output is an error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"resp_t","status":"completed","output":[]}`))
		})

		_, err := client.TransformText(context.Background(), "structure this")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no output text")
	})
}

func TestCapabilityTool(t *testing.T) {
	assert.Equal(t, "web_search_preview", capabilityTool("web_search"))
	assert.Equal(t, "code_interpreter", capabilityTool("code_interpreter"))
	assert.Equal(t, "file_search", capabilityTool("file_search"))
}
