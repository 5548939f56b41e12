// Package provider is the wire adapter for the SwiftSMS bulk HTTP API.
// Success is indicated purely by HTTP 200; the body is opaque text.
package provider

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

	"github.com/swiftbulk/campaign-gateway/internal/config"
	"github.com/swiftbulk/campaign-gateway/internal/model"
)

// ErrCircuitOpen is returned without touching the network while the
// breaker holds the bulk endpoint open.
var ErrCircuitOpen = errors.New("provider circuit open")

// Result carries the raw provider outcome. HTTPCode 200 means accepted;
// everything else, including transport failures (HTTPCode 0), is a
// retryable recipient-level failure.
type Result struct {
	HTTPCode int
	Body     string
}

func (r Result) OK() bool { return r.HTTPCode == http.StatusOK }

// API is the surface the send worker depends on.
type API interface {
	AccountKeyFor(country model.Country) string
	DefaultSenderID() string
	SendBulk(ctx context.Context, accountKey string, numbers []string, body, reference, senderID string) (Result, error)
	Stop(ctx context.Context, accountKey, reference string) (Result, error)
}

type Client struct {
	baseURL     string
	accountKeys map[string]string
	defaultKey  string
	senderID    string
	client      *http.Client
	stopClient  *http.Client
	br          *circuitBreaker
}

var _ API = (*Client)(nil)

func NewClient(cfg config.ProviderConfig) *Client {
	timeout := cfg.TimeoutMs
	if timeout <= 0 {
		timeout = 30000
	}
	stopTimeout := cfg.StopTimeoutMs
	if stopTimeout <= 0 {
		stopTimeout = 15000
	}

	keys := make(map[string]string, len(cfg.AccountKeys))
	for country, key := range cfg.AccountKeys {
		keys[strings.ToUpper(country)] = key
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accountKeys: keys,
		defaultKey:  cfg.DefaultAccountKey,
		senderID:    cfg.SenderID,
		client:      &http.Client{Timeout: time.Duration(timeout) * time.Millisecond},
		stopClient:  &http.Client{Timeout: time.Duration(stopTimeout) * time.Millisecond},
		br: newCircuitBreaker(
			cfg.Breaker.FailThreshold,
			time.Duration(cfg.Breaker.OpenForMs)*time.Millisecond,
		),
	}
}

// AccountKeyFor resolves the per-country account key, falling back to the
// default key. An empty return means the campaign cannot be dispatched.
func (c *Client) AccountKeyFor(country model.Country) string {
	if key := c.accountKeys[country.String()]; key != "" {
		return key
	}
	return c.defaultKey
}

func (c *Client) DefaultSenderID() string { return c.senderID }

type bulkPayload struct {
	MessageBody string   `json:"MessageBody"`
	Reference   string   `json:"Reference"`
	CellNumbers []string `json:"CellNumbers"`
	SenderID    string   `json:"SenderID,omitempty"`
}

type stopPayload struct {
	Reference string `json:"Reference"`
}

// SendBulk POSTs {base_url}/{account_key}/Bulk. The sender id falls back
// to the configured default when the caller passes none.
func (c *Client) SendBulk(ctx context.Context, accountKey string, numbers []string, body, reference, senderID string) (Result, error) {
	if !c.br.allow() {
		return Result{}, ErrCircuitOpen
	}

	if senderID == "" {
		senderID = c.senderID
	}
	payload := bulkPayload{
		MessageBody: body,
		Reference:   reference,
		CellNumbers: numbers,
		SenderID:    senderID,
	}

	res, err := c.post(ctx, c.client, c.baseURL+"/"+accountKey+"/Bulk", payload)
	if err != nil || !res.OK() {
		c.br.onFailure()
		return res, err
	}

	c.br.onSuccess()
	return res, nil
}

// Stop POSTs {base_url}/{account_key}/Stop for a campaign-level
// reference. Best-effort: the breaker does not gate it.
func (c *Client) Stop(ctx context.Context, accountKey, reference string) (Result, error) {
	return c.post(ctx, c.stopClient, c.baseURL+"/"+accountKey+"/Stop", stopPayload{Reference: reference})
}

func (c *Client) post(ctx context.Context, hc *http.Client, url string, payload any) (Result, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")

	res, err := hc.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return Result{HTTPCode: res.StatusCode}, err
	}

	return Result{HTTPCode: res.StatusCode, Body: strings.TrimSpace(string(raw))}, nil
}
