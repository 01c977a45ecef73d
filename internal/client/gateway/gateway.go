package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// Result is the tagged outcome of one gateway call. Exactly one of Data
// or Err is meaningful, selected by OK. Callers never see a raw error
// from the transport layer.
type Result[T any] struct {
	OK   bool
	Data T
	Err  string
}

func ok[T any](data T) Result[T] {
	return Result[T]{OK: true, Data: data}
}

func fail[T any](msg string) Result[T] {
	return Result[T]{Err: msg}
}

// Client issues JSON requests against the analysis API. Every request
// is a single attempt, no retries.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// New builds a client with no request timeout; analysis runs can take
// as long as the model takes, and a hung request simply hangs the
// calling operation.
func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{},
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	return req, nil
}

// errorMessage normalizes a non-2xx response into a display string. A
// JSON body carrying a "detail" string is surfaced verbatim, anything
// else becomes "HTTP <status>: <statusText>".
func errorMessage(resp *http.Response, body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}

func do[T any](c *Client, req *http.Request) Result[T] {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fail[T](err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail[T](err.Error())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fail[T](errorMessage(resp, body))
	}

	var data T
	if len(body) > 0 {
		if err := json.Unmarshal(body, &data); err != nil {
			return fail[T](err.Error())
		}
	}
	return ok(data)
}

// FetchJSON performs a GET and decodes the response body into T.
func FetchJSON[T any](ctx context.Context, c *Client, path string) Result[T] {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return fail[T](err.Error())
	}
	return do[T](c, req)
}

// PostJSON performs a POST with a JSON body and decodes the response into T.
func PostJSON[T any](ctx context.Context, c *Client, path string, body any) Result[T] {
	buf, err := json.Marshal(body)
	if err != nil {
		return fail[T](err.Error())
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(buf))
	if err != nil {
		return fail[T](err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	return do[T](c, req)
}

// UploadFile performs a multipart POST with one file field named "file".
func UploadFile[T any](ctx context.Context, c *Client, path, filename string, content []byte) Result[T] {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fail[T](err.Error())
	}
	if _, err := part.Write(content); err != nil {
		return fail[T](err.Error())
	}
	if err := mw.Close(); err != nil {
		return fail[T](err.Error())
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, &buf)
	if err != nil {
		return fail[T](err.Error())
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return do[T](c, req)
}

// Delete performs a DELETE. The response body is discarded.
func (c *Client) Delete(ctx context.Context, path string) Result[struct{}] {
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return fail[struct{}](err.Error())
	}
	return do[struct{}](c, req)
}
