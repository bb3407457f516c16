package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MereWhiplash/fieldnorm/internal/apitypes"
	"github.com/MereWhiplash/fieldnorm/internal/types"
)

// APIError is a non-2xx response from the API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// Client is an HTTP client for the fieldnorm API
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a new API client
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			// model calls retry with backoff on the server side
			Timeout: 3 * time.Minute,
		},
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	return c.http.Do(req)
}

// do sends the request and decodes a successful response into out
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp apitypes.ErrorResponse
		json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Error
		if msg == "" {
			msg = errResp.Detail
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// Normalize sends sample columns to POST /api/normalize
func (c *Client) Normalize(ctx context.Context, table *types.Table) (*types.Result, error) {
	result := types.NewResult()
	if err := c.do(ctx, "POST", "/api/normalize", apitypes.NormalizeRequest{Data: table}, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Retrieve returns glossary neighbors and the context block for fields
func (c *Client) Retrieve(ctx context.Context, fields []string) (*apitypes.RetrieveResponse, error) {
	var result apitypes.RetrieveResponse
	if err := c.do(ctx, "POST", "/api/retrieve", apitypes.RetrieveRequest{Fields: fields}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Glossary returns the server's glossary
func (c *Client) Glossary(ctx context.Context) ([]types.GlossaryEntry, error) {
	var result apitypes.GlossaryResponse
	if err := c.do(ctx, "GET", "/api/glossary", nil, &result); err != nil {
		return nil, err
	}
	return result.Entries, nil
}

// Health checks GET /health
func (c *Client) Health(ctx context.Context) error {
	var result apitypes.HealthResponse
	if err := c.do(ctx, "GET", "/health", nil, &result); err != nil {
		return err
	}
	if result.Status != "ok" {
		return fmt.Errorf("API unhealthy: %s", result.Status)
	}
	return nil
}
