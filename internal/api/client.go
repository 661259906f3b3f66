package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	httpTimeoutEnvKey = "SMOLPASTE_HTTP_TIMEOUT"
	tokenEnvKey       = "SMOLPASTE_TOKEN"
	uploadFieldName   = "file"
	maxResponseBytes  = 64 << 10
)

// Client is a simple HTTP client for the smolpaste routes.
type Client struct {
	baseURL   string
	http      *http.Client
	authToken string
}

// NewClient creates a new API client. An empty token falls back to
// SMOLPASTE_TOKEN.
func NewClient(baseURL, token string) *Client {
	token = strings.TrimSpace(token)
	if token == "" {
		token = strings.TrimSpace(os.Getenv(tokenEnvKey))
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: httpTimeoutFromEnv()},
		authToken: token,
	}
}

// Ping checks whether the server is reachable and its database answers.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	_, err = c.send(req)
	return err
}

// Upload streams content as the first multipart field and returns the paste
// URL reported by the server. Only the extension of name is kept server side.
func (c *Client) Upload(ctx context.Context, name string, content io.Reader) (string, error) {
	if c.authToken == "" {
		return "", fmt.Errorf("token is required (use --token or %s)", tokenEnvKey)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile(uploadFieldName, name)
		if err == nil {
			_, err = io.Copy(part, content)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/new", pr)
	if err != nil {
		pr.CloseWithError(err)
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.setAuthHeader(req)

	body, err := c.send(req)
	if err != nil {
		pr.CloseWithError(err)
		return "", err
	}
	return strings.TrimSpace(body), nil
}

// Delete removes the paste with the given id.
func (c *Client) Delete(ctx context.Context, id string) error {
	if c.authToken == "" {
		return fmt.Errorf("token is required (use --token or %s)", tokenEnvKey)
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("id is required")
	}

	query := url.Values{}
	query.Set("id", id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/delete?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	c.setAuthHeader(req)

	_, err = c.send(req)
	return err
}

func (c *Client) send(req *http.Request) (string, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", decodeError(resp, body)
	}
	return string(body), nil
}

func decodeError(resp *http.Response, body []byte) error {
	return &APIError{
		Status:  resp.StatusCode,
		Code:    codeForStatus(resp.StatusCode),
		Message: strings.TrimSpace(string(body)),
	}
}

func (c *Client) setAuthHeader(req *http.Request) {
	if c.authToken == "" || req == nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)
}

// httpTimeoutFromEnv returns the client timeout. The default is no timeout
// so large uploads are bounded only by the caller's context.
func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return 0
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return 0
}
