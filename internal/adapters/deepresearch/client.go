// Package deepresearch implements the remote research provider ports over an
// OpenAI-compatible background Responses API.
package deepresearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jmespath-community/go-jmespath"

	"github.com/campaignforge/research-api/config"
	"github.com/campaignforge/research-api/internal/core"
	"github.com/campaignforge/research-api/internal/domain/model"
	"github.com/campaignforge/research-api/internal/domain/research"
)

// JMESPathEvaluator abstracts JMESPath operations for testability.
type JMESPathEvaluator interface {
	Evaluate(expr string, data any) (any, error)
}

// jmespathLibEvaluator implements JMESPathEvaluator using go-jmespath.
type jmespathLibEvaluator struct{}

func (j jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// ClientOptions groups dependencies for Client.
type ClientOptions struct {
	Config     config.ProviderConfig // Required: provider configuration
	HTTPClient *http.Client          // Optional: override transport (tests)
	Evaluator  JMESPathEvaluator     // Optional: override JMESPath evaluation
	Logger     *slog.Logger          // Optional: structured logger
}

// Client talks to the provider's Responses API. Research runs as background
// tasks; the structuring transform is a synchronous call against a cheaper
// model. Output text and the tool trace are pulled out of the raw response
// JSON with the configured JMESPath expressions, so payload drift between
// provider versions is a config change.
type Client struct {
	cfg    config.ProviderConfig
	http   *http.Client
	jems   JMESPathEvaluator
	logger *slog.Logger
}

// NewClient constructs a new Client.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Config.BaseURL == "" {
		return nil, errors.New("provider base URL is required")
	}
	if opts.Config.APIKey == "" {
		return nil, errors.New("provider API key is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Config.RequestTimeout}
	}

	jems := opts.Evaluator
	if jems == nil {
		jems = jmespathLibEvaluator{}
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "deepresearch_client")
	}

	return &Client{
		cfg:    opts.Config,
		http:   httpClient,
		jems:   jems,
		logger: logger,
	}, nil
}

// createResponseRequest is the Responses API request body.
type createResponseRequest struct {
	Model      string         `json:"model"`
	Input      string         `json:"input"`
	Background bool           `json:"background,omitempty"`
	Tools      []responseTool `json:"tools,omitempty"`
}

type responseTool struct {
	Type string `json:"type"`
}

// responseEnvelope is the subset of the Responses API payload we decode
// directly; everything else is read via JMESPath from the raw document.
type responseEnvelope struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateResearchTask submits one background research task.
func (c *Client) CreateResearchTask(ctx context.Context, params core.CreateResearchTaskParams) (core.CreateResearchTaskResult, error) {
	if len(params.Capabilities) == 0 {
		return core.CreateResearchTaskResult{}, errors.New("capability list must not be empty")
	}

	tools := make([]responseTool, 0, len(params.Capabilities))
	for _, capability := range params.Capabilities {
		tools = append(tools, responseTool{Type: capabilityTool(capability)})
	}

	body, err := json.Marshal(createResponseRequest{
		Model:      c.cfg.ResearchModel,
		Input:      params.Prompt,
		Background: true,
		Tools:      tools,
	})
	if err != nil {
		return core.CreateResearchTaskResult{}, fmt.Errorf("encode create request: %w", err)
	}

	_, env, err := c.do(ctx, http.MethodPost, "/responses", body)
	if err != nil {
		return core.CreateResearchTaskResult{}, err
	}

	if env.ID == "" {
		return core.CreateResearchTaskResult{}, errors.New("provider returned no task reference")
	}

	if c.logger != nil {
		c.logger.InfoContext(ctx, "research task created",
			"task_ref", env.ID, "status", env.Status, "model", c.cfg.ResearchModel)
	}

	return core.CreateResearchTaskResult{
		TaskRef: env.ID,
		Status:  createStatus(env.Status),
	}, nil
}

// GetResearchTask fetches the current snapshot for a task reference.
func (c *Client) GetResearchTask(ctx context.Context, taskRef string) (research.TaskSnapshot, error) {
	if taskRef == "" {
		return research.TaskSnapshot{}, errors.New("task ref is required")
	}

	raw, env, err := c.do(ctx, http.MethodGet, "/responses/"+taskRef, nil)
	if err != nil {
		return research.TaskSnapshot{}, err
	}

	snap := research.TaskSnapshot{State: snapshotState(env.Status)}
	if env.Error != nil {
		snap.Error = env.Error.Message
	}

	if snap.State == research.SnapshotCompleted {
		snap.OutputText = c.extractOutputText(ctx, raw)
		snap.ToolTrace = c.extractToolTrace(ctx, raw)
	}
	return snap, nil
}

// TransformText issues the synchronous structuring call.
func (c *Client) TransformText(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(createResponseRequest{
		Model: c.cfg.TransformModel,
		Input: prompt,
	})
	if err != nil {
		return "", fmt.Errorf("encode transform request: %w", err)
	}

	raw, env, err := c.do(ctx, http.MethodPost, "/responses", body)
	if err != nil {
		return "", err
	}
	if env.Error != nil && env.Error.Message != "" {
		return "", fmt.Errorf("transform call failed: %s", env.Error.Message)
	}

	text := c.extractOutputText(ctx, raw)
	if text == "" {
		return "", errors.New("transform call returned no output text")
	}
	return text, nil
}

// do performs one provider round-trip and decodes the response envelope.
// A 404 on a task read maps to core.ErrTaskNotFound; other non-2xx statuses
// are plain errors the caller treats as transient.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (map[string]any, responseEnvelope, error) {
	var env responseEnvelope

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimSuffix(c.cfg.BaseURL, "/")+path, reader)
	if err != nil {
		return nil, env, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, env, fmt.Errorf("provider request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, env, fmt.Errorf("%s %s: %w", method, path, core.ErrTaskNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, env, fmt.Errorf("provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, env, fmt.Errorf("read provider response: %w", err)
	}

	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, env, fmt.Errorf("decode provider response: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, env, fmt.Errorf("decode provider response document: %w", err)
	}
	return raw, env, nil
}

func (c *Client) extractOutputText(ctx context.Context, raw map[string]any) string {
	// output_text is a convenience field some deployments include; prefer it.
	if text, ok := raw["output_text"].(string); ok && text != "" {
		return text
	}

	result, err := c.jems.Evaluate(c.cfg.OutputTextPath, raw)
	if err != nil {
		if c.logger != nil {
			c.logger.WarnContext(ctx, "output text extraction failed",
				"path", c.cfg.OutputTextPath, "error", err)
		}
		return ""
	}
	return joinTextResult(result)
}

// joinTextResult flattens a JMESPath result into one string. Projections over
// multi-part messages yield a list of text segments; those are joined with
// newlines. A join inside the expression itself would need a JSON literal for
// the separator, which cannot be written inside a struct tag.
func joinTextResult(result any) string {
	switch v := result.(type) {
	case string:
		return v
	case []any:
		var parts []string
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}

func (c *Client) extractToolTrace(ctx context.Context, raw map[string]any) []model.ToolInvocation {
	result, err := c.jems.Evaluate(c.cfg.ToolTracePath, raw)
	if err != nil {
		if c.logger != nil {
			c.logger.WarnContext(ctx, "tool trace extraction failed",
				"path", c.cfg.ToolTracePath, "error", err)
		}
		return nil
	}

	entries, ok := result.([]any)
	if !ok {
		return nil
	}

	var trace []model.ToolInvocation
	for _, entry := range entries {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		inv := model.ToolInvocation{Kind: stringField(m, "type")}
		if inv.Kind == "" {
			continue
		}
		if action, ok := m["action"].(map[string]any); ok {
			inv.Query = stringField(action, "query")
			inv.Detail = stringField(action, "url")
		}
		trace = append(trace, inv)
	}
	return trace
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// capabilityTool maps a capability flag onto the provider's tool type.
func capabilityTool(capability string) string {
	switch capability {
	case "web_search":
		return "web_search_preview"
	case "code_interpreter":
		return "code_interpreter"
	default:
		return capability
	}
}

// createStatus maps the provider's create-time status onto the job enum.
func createStatus(status string) model.JobStatus {
	switch status {
	case "queued":
		return model.JobStatusQueued
	case "in_progress":
		return model.JobStatusInProgress
	default:
		return model.JobStatusPending
	}
}

// snapshotState maps the provider's task status onto the snapshot enum.
// cancelled, expired, and incomplete all count as remote failure.
func snapshotState(status string) research.SnapshotState {
	switch status {
	case "queued":
		return research.SnapshotQueued
	case "in_progress":
		return research.SnapshotInProgress
	case "completed":
		return research.SnapshotCompleted
	case "failed", "cancelled", "expired", "incomplete":
		return research.SnapshotFailed
	default:
		return research.SnapshotState(status)
	}
}

// interface conformance
var (
	_ core.ResearchTaskClient = (*Client)(nil)
	_ core.TextTransformer    = (*Client)(nil)
)
