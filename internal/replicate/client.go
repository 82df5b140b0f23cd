package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/logger"
)

const (
	defaultBaseURL = "https://api.replicate.com/v1"

	// Sync-mode hint: the API holds the request open up to this many seconds
	// before falling back to polling
	preferWaitSeconds = 60

	pollInterval   = 1 * time.Second
	requestTimeout = 120 * time.Second
)

// Client calls the Replicate predictions API. The contract is deliberately
// opaque: a flat input map goes in, output references and a provider id come
// out. No retries.
type Client struct {
	httpClient *http.Client
	apiToken   string
	baseURL    string
}

// NewClient creates a Replicate client. baseURL may be empty for production.
func NewClient(apiToken, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		apiToken:   apiToken,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// prediction mirrors the relevant fields of the Replicate prediction resource
type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  any             `json:"error"`
}

// Generate runs one prediction against modelEndpoint ("owner/model:version"
// or "owner/model") and blocks until it reaches a terminal state. It returns
// the output references and the provider's prediction id.
func (c *Client) Generate(ctx context.Context, modelEndpoint string, input map[string]any) ([]string, string, error) {
	url, body, err := c.buildRequest(modelEndpoint, input)
	if err != nil {
		return nil, "", err
	}

	pred, err := c.post(ctx, url, body)
	if err != nil {
		return nil, "", err
	}

	pred, err = c.waitForTerminal(ctx, pred)
	if err != nil {
		return nil, pred.ID, err
	}

	if pred.Status != "succeeded" {
		return nil, pred.ID, fmt.Errorf("prediction %s ended with status %q: %v", pred.ID, pred.Status, pred.Error)
	}

	outputs := decodeOutputs(pred.Output)
	return outputs, pred.ID, nil
}

// buildRequest routes versioned endpoints to the generic predictions resource
// and bare model names to the model-scoped one
func (c *Client) buildRequest(modelEndpoint string, input map[string]any) (string, map[string]any, error) {
	if modelEndpoint == "" {
		return "", nil, fmt.Errorf("model endpoint is empty")
	}

	// model_endpoint is routing information, not model input
	payload := make(map[string]any, len(input))
	for k, v := range input {
		if k == "model_endpoint" {
			continue
		}
		payload[k] = v
	}

	if _, version, ok := strings.Cut(modelEndpoint, ":"); ok {
		return c.baseURL + "/predictions", map[string]any{
			"version": version,
			"input":   payload,
		}, nil
	}
	return fmt.Sprintf("%s/models/%s/predictions", c.baseURL, modelEndpoint), map[string]any{
		"input": payload,
	}, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) (*prediction, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", fmt.Sprintf("wait=%d", preferWaitSeconds))

	return c.do(req)
}

func (c *Client) get(ctx context.Context, id string) (*prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/predictions/"+id, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+c.apiToken)
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*prediction, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read replicate response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("replicate returned %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var pred prediction
	if err := json.Unmarshal(raw, &pred); err != nil {
		return nil, fmt.Errorf("failed to decode replicate response: %w", err)
	}
	return &pred, nil
}

// waitForTerminal polls until the prediction settles. The create call usually
// returns a terminal prediction already thanks to the Prefer header.
func (c *Client) waitForTerminal(ctx context.Context, pred *prediction) (*prediction, error) {
	for !isTerminal(pred.Status) {
		select {
		case <-ctx.Done():
			return pred, ctx.Err()
		case <-time.After(pollInterval):
		}

		next, err := c.get(ctx, pred.ID)
		if err != nil {
			return pred, err
		}
		pred = next
		logger.Debug("Polled prediction", logger.Fields{
			"prediction_id": pred.ID,
			"status":        pred.Status,
		})
	}
	return pred, nil
}

func isTerminal(status string) bool {
	switch status {
	case "succeeded", "failed", "canceled":
		return true
	}
	return false
}

// decodeOutputs accepts both a list of references and a single reference,
// which is how different models shape their output
func decodeOutputs(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
