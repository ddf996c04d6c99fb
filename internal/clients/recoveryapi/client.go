package recoveryapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	api "github.com/avialine/crew-recovery/internal/transport/http"
)

// Client calls the crew-recovery HTTP API using the transport's request and
// response shapes.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) CheckLegality(ctx context.Context, req api.LegalityCheckRequest) (api.VerdictDTO, error) {
	var verdict api.VerdictDTO
	if err := c.post(ctx, "/v1/legality/check", req, &verdict); err != nil {
		return api.VerdictDTO{}, err
	}
	return verdict, nil
}

func (c *Client) FindReplacements(ctx context.Context, req api.ReplacementSearchRequest) (api.ReplacementSearchResponse, error) {
	var resp api.ReplacementSearchResponse
	if err := c.post(ctx, "/v1/replacements", req, &resp); err != nil {
		return api.ReplacementSearchResponse{}, err
	}
	return resp, nil
}

func (c *Client) ExecuteSwap(ctx context.Context, req api.SwapRequest) (api.SwapResponse, error) {
	var resp api.SwapResponse
	if err := c.post(ctx, "/v1/crew/swap", req, &resp); err != nil {
		return api.SwapResponse{}, err
	}
	return resp, nil
}

func (c *Client) GetDuty(ctx context.Context, crewID string) (api.DutyResponse, error) {
	var resp api.DutyResponse
	if err := c.do(ctx, http.MethodGet, "/v1/crew/"+crewID+"/duty", nil, &resp); err != nil {
		return api.DutyResponse{}, err
	}
	return resp, nil
}

func (c *Client) PutDuty(ctx context.Context, crewID string, req api.PutDutyRequest) (api.DutyResponse, error) {
	var resp api.DutyResponse
	if err := c.do(ctx, http.MethodPut, "/v1/crew/"+crewID+"/duty", req, &resp); err != nil {
		return api.DutyResponse{}, err
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, payload, out)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s %s: %w", method, path, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, readAPIError(resp.Body))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func readAPIError(body io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil || payload.Error == "" {
		return "unknown error"
	}
	return payload.Error
}
