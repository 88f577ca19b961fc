// Package gateway wraps every outbound API call: bearer injection,
// response classification, and forced session invalidation on 401.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	platformerrors "skycanvas-client-go/internal/platform/errors"
	"skycanvas-client-go/internal/platform/logging"
)

// businessOK is the success code inside the response envelope.
const businessOK = 200

// TokenSource supplies the current bearer token; empty means none.
type TokenSource interface {
	Token() string
}

// Invalidator tears the session down after an authorization failure.
// Implementations must be idempotent.
type Invalidator interface {
	Invalidate()
}

// Config holds gateway connection parameters.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the single chokepoint for API traffic. It performs no retries
// and no backoff: every failure surfaces to the caller exactly once.
type Client struct {
	http        *http.Client
	baseURL     string
	tokens      TokenSource
	invalidator Invalidator
	logger      *logging.Logger
}

// envelope is the server's uniform response wrapper.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func New(cfg Config, tokens TokenSource, logger *logging.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		tokens:  tokens,
		logger:  logger,
	}
}

// SetInvalidator wires the forced-invalidation hook. Wired after
// construction because the session store also depends on the gateway.
func (c *Client) SetInvalidator(inv Invalidator) {
	c.invalidator = inv
}

// Send issues one request and returns the envelope's data field.
func (c *Client) Send(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	const op = "gateway.send"

	var reader io.Reader
	if body != nil {
		encoded, err := sonic.Marshal(body)
		if err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindTransport,
				op, "failed to encode request body", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport,
			op, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport,
			op, "network request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport,
			op, "failed to read response body", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Forced invalidation happens here regardless of which logical
		// operation issued the request.
		if c.invalidator != nil {
			c.invalidator.Invalidate()
		}
		c.logger.Warn("[gateway] %s %s unauthorized, session invalidated", method, path)
		return nil, platformerrors.WithStatus(platformerrors.KindAuth,
			op, "authorization expired", http.StatusUnauthorized)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("[gateway] %s %s failed with status %d", method, path, resp.StatusCode)
		return nil, platformerrors.WithStatus(platformerrors.KindHTTP,
			op, fmt.Sprintf("request failed (%d)", resp.StatusCode), resp.StatusCode)
	}

	var env envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport,
			op, "failed to decode response envelope", err)
	}
	if env.Code != businessOK {
		message := env.Message
		if message == "" {
			message = "操作失败"
		}
		return nil, platformerrors.New(platformerrors.KindBusiness, op, message)
	}

	c.logger.Debug("[gateway] %s %s ok", method, path)
	return env.Data, nil
}

// GetJSON issues a GET and decodes the data field into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	data, err := c.Send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decodeData(data, out)
}

// PostJSON issues a POST with a JSON body and decodes the data field into out.
// A nil out discards the payload.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	data, err := c.Send(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	return decodeData(data, out)
}

// PutJSON issues a PUT with a JSON body and decodes the data field into out.
func (c *Client) PutJSON(ctx context.Context, path string, body, out any) error {
	data, err := c.Send(ctx, http.MethodPut, path, body)
	if err != nil {
		return err
	}
	return decodeData(data, out)
}

func decodeData(data json.RawMessage, out any) error {
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return platformerrors.Wrap(platformerrors.KindTransport,
			"gateway.decode", "failed to decode response payload", err)
	}
	return nil
}
