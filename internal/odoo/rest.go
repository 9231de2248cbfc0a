package odoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/giantswarm/mcp-odoo/internal/api"
)

// REST endpoints of the backend's MCP module.
const (
	authValidatePath = "/mcp/auth/validate"
	modelsPath       = "/mcp/models"
	modelAccessPath  = "/mcp/models/%s/access"

	apiKeyHeader = "X-API-Key"
)

// restEnvelope is the common response shape of the REST endpoints.
type restEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type restClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	sanitizer  *Sanitizer
}

func newRESTClient(baseURL, apiKey string, transport http.RoundTripper, sanitizer *Sanitizer) *restClient {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &restClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Transport: transport},
		sanitizer:  sanitizer,
	}
}

// get fetches path and decodes the envelope's data into out. HTTP status
// codes map onto the api error types.
func (c *restClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &api.ConnectionError{Op: path, Err: err}
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &api.ConnectionError{Op: path, Err: errors.New(c.sanitizer.Redact(err.Error()))}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &api.ConnectionError{Op: path, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return &api.AuthenticationError{Message: "invalid API key"}
	case http.StatusForbidden:
		return &api.PermissionError{Reason: api.ReasonBackendDenied, Message: "access denied to MCP endpoints"}
	case http.StatusNotFound:
		return &api.ConnectionError{Op: path, Err: fmt.Errorf("endpoint not found (is the MCP module installed?)")}
	case http.StatusTooManyRequests:
		return &api.ConnectionError{Op: path, Err: fmt.Errorf("rate limit exceeded")}
	default:
		return &api.ConnectionError{Op: path, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var envelope restEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return &api.ConnectionError{Op: path, Err: fmt.Errorf("invalid JSON response: %w", err)}
	}
	if !envelope.Success {
		msg := "unknown error"
		if envelope.Error != nil && envelope.Error.Message != "" {
			msg = c.sanitizer.Message(envelope.Error.Message)
		}
		return &api.ConnectionError{Op: path, Err: fmt.Errorf("API error: %s", msg)}
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return &api.ConnectionError{Op: path, Err: fmt.Errorf("invalid response data: %w", err)}
	}
	return nil
}

// validateAPIKey returns the user id the key belongs to.
func (c *restClient) validateAPIKey(ctx context.Context) (int, error) {
	var data struct {
		Valid  bool `json:"valid"`
		UserID int  `json:"user_id"`
	}
	if err := c.get(ctx, authValidatePath, &data); err != nil {
		return 0, err
	}
	if !data.Valid {
		return 0, &api.AuthenticationError{Message: "invalid API key"}
	}
	return data.UserID, nil
}

func (c *restClient) enabledModels(ctx context.Context) ([]ModelInfo, error) {
	var data struct {
		Models []ModelInfo `json:"models"`
	}
	if err := c.get(ctx, modelsPath, &data); err != nil {
		return nil, err
	}
	return data.Models, nil
}

func (c *restClient) modelAccess(ctx context.Context, model string) (*ModelAccess, error) {
	var data ModelAccess
	if err := c.get(ctx, fmt.Sprintf(modelAccessPath, url.PathEscape(model)), &data); err != nil {
		return nil, err
	}
	if data.Model == "" {
		data.Model = model
	}
	return &data, nil
}
