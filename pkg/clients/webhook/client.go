package webhook

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/herdsync/internal/config"
)

// Client delivers JSON payloads to the configured webhook.
type Client interface {
	Post(ctx context.Context, payload Payload) error
}

// Payload is the body posted to the webhook.
type Payload struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
	Data any    `json:"data"`
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client using the provided configuration values.
func NewClient(cfg config.WebhookConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)
	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	return &APIClient{
		httpClient: restyClient,
		url:        strings.TrimSuffix(cfg.URL, "/"),
	}
}

// apiError represents an error body returned by the receiver.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Post sends the payload and fails on transport errors or non-2xx responses.
func (c *APIClient) Post(ctx context.Context, payload Payload) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		return fmt.Errorf("webhook error: code=%d, message=%s", resp.StatusCode(), message)
	}

	return nil
}
