// Package riskapi is the HTTP client for the external risk scoring service.
// The service itself is a black box: this client only normalizes its two
// endpoints into the domain risk shapes.
package riskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/safetyshield/guardian/internal/core"
)

// TransportError is a network or HTTP failure talking to the risk service.
// Callers catch it at the call site and fall back to the local heuristic
// classifier; it never propagates further.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: API request failed: %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client calls the site and message risk endpoints. Each call is attempted
// exactly once with no retries; the only timeout is whatever the injected
// http.Client enforces.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a risk API client. httpClient may be nil, in which case
// http.DefaultClient is used.
func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// CheckSite scores a page URL via GET <base>/check?url=<urlencoded>.
func (c *Client) CheckSite(ctx context.Context, pageURL string) (*core.SiteRisk, error) {
	endpoint := fmt.Sprintf("%s/check?url=%s", c.baseURL, url.QueryEscape(pageURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{Op: "check site", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "check site", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{Op: "check site", Status: resp.StatusCode}
	}

	var risk core.SiteRisk
	if err := json.NewDecoder(resp.Body).Decode(&risk); err != nil {
		return nil, &TransportError{Op: "check site", Err: fmt.Errorf("decode response: %w", err)}
	}

	c.logger.Debug("site risk checked",
		zap.String("url", pageURL),
		zap.Float64("score", risk.Score()),
		zap.Bool("official", risk.Official))
	return &risk, nil
}

// messagePayload is the request body of the message risk endpoint.
type messagePayload struct {
	Content string            `json:"content"`
	URLs    []string          `json:"urls"`
	Headers map[string]string `json:"headers"`
}

// CheckMessage scores an extracted email via POST <base>/message/check. The
// From header carries the bare address, stripped of any display name.
func (c *Client) CheckMessage(ctx context.Context, content *core.EmailContent) (*core.MessageRisk, error) {
	urls := content.URLs
	if urls == nil {
		urls = []string{}
	}
	payload := messagePayload{
		Content: content.Body,
		URLs:    urls,
		Headers: map[string]string{"From": ExtractEmailAddress(content.Sender)},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &TransportError{Op: "check message", Err: err}
	}

	endpoint := c.baseURL + "/message/check"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: "check message", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "check message", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{Op: "check message", Status: resp.StatusCode}
	}

	var risk core.MessageRisk
	if err := json.NewDecoder(resp.Body).Decode(&risk); err != nil {
		return nil, &TransportError{Op: "check message", Err: fmt.Errorf("decode response: %w", err)}
	}

	c.logger.Debug("message risk checked",
		zap.Float64("overall_risk", risk.OverallRisk),
		zap.Bool("official", risk.Official))
	return &risk, nil
}

var (
	angleAddrPattern = regexp.MustCompile(`<([^>]+@[^>]+)>`)
	bareAddrPattern  = regexp.MustCompile(`([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`)
)

// ExtractEmailAddress pulls the bare address out of a sender string such as
// "Name <user@example.com>". It returns "" when no address is found.
func ExtractEmailAddress(sender string) string {
	if sender == "" {
		return ""
	}
	if m := angleAddrPattern.FindStringSubmatch(sender); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := bareAddrPattern.FindStringSubmatch(sender); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
