package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Client talks to the execution backend. Invoke is for JSON request/response
// endpoints, Stream for the long-running operation endpoints that chunk
// their output. Retries are a caller decision; the client never retries.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewClient(baseURL string, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		// No client timeout: operation streams run as long as the backend
		// keeps writing. Callers bound lifetimes with the request context.
		HTTPClient: &http.Client{},
	}
}

// RemoteOperationError carries the backend HTTP status and either the
// server-provided detail string or a generic message when the error body
// was not parseable.
type RemoteOperationError struct {
	StatusCode int
	Detail     string
}

func (e *RemoteOperationError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
}

func (c *Client) do(ctx context.Context, method string, path string, payload interface{}) (*http.Response, error) {
	logger := log.WithFields(log.Fields{"package": "client", "event": "request", "path": path})

	var body io.Reader
	if payload != nil {
		js, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(js)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.Must(uuid.NewRandom()).String())
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	logger.Debug("issuing backend request")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}

	return resp, nil
}

// decodeError turns a non-2xx response into a RemoteOperationError, using
// the backend's {detail} body when one parses.
func decodeError(resp *http.Response) error {
	oerr := &RemoteOperationError{
		StatusCode: resp.StatusCode,
		Detail:     fmt.Sprintf("request failed with status %s", resp.Status),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return oerr
	}

	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		oerr.Detail = payload.Detail
	}

	return oerr
}

// Invoke issues a JSON request and decodes the 2xx response body into out.
// A nil out discards the response body.
func (c *Client) Invoke(ctx context.Context, method string, path string, payload interface{}, out interface{}) error {
	resp, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, err = io.Copy(io.Discard, resp.Body)
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// Stream issues a JSON request and hands back the live response body as a
// pull-based chunk reader. The caller owns the stream and must Close it.
func (c *Client) Stream(ctx context.Context, path string, payload interface{}) (*Stream, error) {
	resp, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}
	if resp.Body == nil {
		return nil, &RemoteOperationError{StatusCode: resp.StatusCode, Detail: "response carried no body"}
	}
	return newStream(resp.Body), nil
}
