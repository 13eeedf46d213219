package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-sitecms/internal/apperrors"
)

var (
	ErrBaseURLRequired   = errors.New("email: base url is required")
	ErrRecipientRequired = apperrors.Validation("EMAIL_RECIPIENT_REQUIRED", "email: at least one recipient is required")
	ErrSubjectRequired   = apperrors.Validation("EMAIL_SUBJECT_REQUIRED", "email: subject is required")
)

// Message is one transactional email.
type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// Client posts messages to a transactional email HTTP API.
type Client struct {
	endpoint string
	apiKey   string
	from     string
	http     *http.Client
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithDefaultFrom fills Message.From when a caller leaves it empty.
func WithDefaultFrom(from string) Option {
	return func(c *Client) { c.from = strings.TrimSpace(from) }
}

func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}
	c := &Client{
		endpoint: baseURL + "/emails",
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Send dispatches msg and returns the provider message id when one is
// reported.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if msg.From == "" {
		msg.From = c.from
	}
	if len(msg.To) == 0 {
		return "", ErrRecipientRequired
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return "", ErrSubjectRequired
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("email: encode message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("email: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", apperrors.Integration("EMAIL_SEND_FAILED", err, "email: send %q", msg.Subject)
	}
	defer resp.Body.Close()
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 300 {
		return "", apperrors.Integration("EMAIL_SEND_FAILED",
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))),
			"email: send %q", msg.Subject)
	}

	var reply struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(payload, &reply)
	return reply.ID, nil
}
