package webhook

import (
	"context"
	"fmt"
	"strconv"

	"github.com/KXX-Hub/kxx-digital-album/internal/adapter"
)

// Client delivers signed webhook events to one endpoint
type Client struct {
	url    string
	secret string
	http   adapter.HTTPClient
	clock  adapter.Clock
}

// NewClient creates a webhook client for the given endpoint
func NewClient(url, secret string, httpClient adapter.HTTPClient, clock adapter.Clock) *Client {
	return &Client{
		url:    url,
		secret: secret,
		http:   httpClient,
		clock:  clock,
	}
}

// URL returns the endpoint the client delivers to
func (c *Client) URL() string {
	return c.url
}

// Send signs the event and posts it, returning the response body
func (c *Client) Send(ctx context.Context, event WebhookEvent) ([]byte, error) {
	payload, signature, timestamp, err := GenerateSignedPayload(c.secret, event, c.clock.Now())
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Post(ctx, c.url, map[string]string{
		"Content-Type":  "application/json",
		HeaderSignature: signature,
		HeaderTimestamp: strconv.FormatInt(timestamp, 10),
		HeaderEventID:   event.EventID,
	}, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to deliver %s webhook: %w", event.EventType, err)
	}

	return resp, nil
}
