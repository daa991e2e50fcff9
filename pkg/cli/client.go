package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apiv1 "github.com/mtc-analytics/patlens/pkg/api/v1"
	"github.com/mtc-analytics/patlens/pkg/types"
)

// Client talks to the gateway HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a gateway API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
}

// ListQueries fetches catalog entries matching the filters.
func (c *Client) ListQueries(ctx context.Context, category, search string, tags []string, commonOnly bool) ([]*types.QueryDefinition, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if search != "" {
		q.Set("search", search)
	}
	for _, t := range tags {
		q.Add("tag", t)
	}
	if commonOnly {
		q.Set("common", "true")
	}

	var out []*types.QueryDefinition
	err := c.do(ctx, http.MethodGet, "/api/v1/queries?"+q.Encode(), nil, &out)
	return out, err
}

// GetQuery fetches one query definition.
func (c *Client) GetQuery(ctx context.Context, id string) (*types.QueryDefinition, error) {
	var out types.QueryDefinition
	err := c.do(ctx, http.MethodGet, "/api/v1/queries/"+url.PathEscape(id), nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RunQuery executes a query with the given parameter values.
func (c *Client) RunQuery(ctx context.Context, id string, parameters map[string]any) (*apiv1.RunResponse, error) {
	var out apiv1.RunResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/queries/"+url.PathEscape(id)+"/run",
		apiv1.RunRequest{Parameters: parameters}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DraftSQL asks the assist service for a query draft.
func (c *Client) DraftSQL(ctx context.Context, request string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, http.MethodPost, "/api/v1/assist/draft", apiv1.DraftRequest{Request: request}, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	if !envelope.Success {
		if envelope.Error != "" {
			return fmt.Errorf("%s", envelope.Error)
		}
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}
