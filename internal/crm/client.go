package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/goliatone/go-sitecms/internal/apperrors"
)

const (
	// DefaultTimeout bounds every CRM call.
	DefaultTimeout = 15 * time.Second
	// DefaultRate is the proactive request rate per second.
	DefaultRate = 2.0
)

var (
	ErrBaseURLRequired = errors.New("crm: base url is required")
	ErrEmailRequired   = apperrors.Validation("CRM_EMAIL_REQUIRED", "crm: contact email is required")
	ErrContactRequired = apperrors.Validation("CRM_CONTACT_REQUIRED", "crm: contact id is required")
)

// Contact is the subset of CRM contact fields the site writes.
type Contact struct {
	Email     string `json:"email"`
	FirstName string `json:"firstname,omitempty"`
	LastName  string `json:"lastname,omitempty"`
	Company   string `json:"company,omitempty"`
	Country   string `json:"country,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Language  string `json:"preferred_locale,omitempty"`
}

// Client talks to the marketing automation REST API with basic auth.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	limiter  *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithRate sets the token bucket rate in requests per second.
func WithRate(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

func WithCredentials(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(DefaultRate), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type contactEnvelope struct {
	Contact struct {
		ID json.Number `json:"id"`
	} `json:"contact"`
}

// UpsertContact creates or updates a contact keyed by email and returns its
// CRM id.
func (c *Client) UpsertContact(ctx context.Context, contact Contact) (int, error) {
	if strings.TrimSpace(contact.Email) == "" {
		return 0, ErrEmailRequired
	}
	var out contactEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/contacts/new", contact, &out); err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(out.Contact.ID.String())
	if err != nil || id <= 0 {
		return 0, apperrors.Integration("CRM_REPLY_INVALID", fmt.Errorf("contact id %q", out.Contact.ID), "crm: upsert contact")
	}
	return id, nil
}

// AddToSegment adds a contact to a segment.
func (c *Client) AddToSegment(ctx context.Context, contactID, segmentID int) error {
	if contactID <= 0 {
		return ErrContactRequired
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/segments/%d/contact/%d/add", segmentID, contactID), nil, nil)
}

// AddToCampaign adds a contact to a campaign.
func (c *Client) AddToCampaign(ctx context.Context, contactID, campaignID int) error {
	if contactID <= 0 {
		return ErrContactRequired
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/campaigns/%d/contact/%d/add", campaignID, contactID), nil, nil)
}

// AddTags appends tags to a contact.
func (c *Client) AddTags(ctx context.Context, contactID int, tags []string) error {
	if contactID <= 0 {
		return ErrContactRequired
	}
	if len(tags) == 0 {
		return nil
	}
	body := map[string]any{"tags": tags}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/contacts/%d/edit", contactID), body, nil)
}

// AddPoints increments a contact's score.
func (c *Client) AddPoints(ctx context.Context, contactID, points int) error {
	if contactID <= 0 {
		return ErrContactRequired
	}
	if points == 0 {
		return nil
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/contacts/%d/points/plus/%d", contactID, points), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperrors.Integration("CRM_RATE_WAIT", err, "crm: rate limit wait")
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("crm: encode %s: %w", path, err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("crm: build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Integration("CRM_REQUEST_FAILED", err, "crm: %s %s", method, path)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 300 {
		return apperrors.Integration("CRM_REQUEST_FAILED",
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))),
			"crm: %s %s", method, path)
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return apperrors.Integration("CRM_REPLY_INVALID", err, "crm: decode %s", path)
	}
	return nil
}
