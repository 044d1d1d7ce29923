// Package client talks to the issue endpoint on behalf of a trusted identity source
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

	"github.com/kodekulture/tokenlink/login"
)

const storeTokenPath = "/store-token"

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// New returns a client for the server at baseURL. A nil httpClient gets a default with a timeout.
func New(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// StoreToken asks the server to persist a new login token for a player.
func (c *Client) StoreToken(ctx context.Context, req login.IssueRequest) error {
	b, err := json.Marshal(req)
	if err != nil {
		return err
	}
	url := c.baseURL + storeTokenPath
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	r.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		r.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.http.Do(r)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return &StatusError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return nil
}
