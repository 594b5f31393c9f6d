package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rodgers-mmsi/ksqlpipe/internal/logging"
	"github.com/rodgers-mmsi/ksqlpipe/pkg/ksqlpipe"
)

// mediaType is the ksqlDB statement media type, used as both Content-Type
// and Accept.
const mediaType = "application/vnd.ksql.v1+json; charset=utf-8"

// requestIDHeader carries a per-call correlation id, logged on both ends.
const requestIDHeader = "X-Request-Id"

// Client is an HTTP client for one ksqlDB server. Credentials belong to the
// client instance, so callers talking to several servers with different
// credentials simply hold several clients.
type Client struct {
	baseURL    *url.URL
	username   string
	password   string
	httpClient *http.Client
	log        ksqlpipe.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBasicAuth attaches HTTP Basic credentials to every call.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithHTTPClient substitutes the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds a single HTTP round trip.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(log ksqlpipe.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", baseURL, ksqlpipe.ErrInvalidConfig)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server URL %q must be http or https: %w", baseURL, ksqlpipe.ErrInvalidConfig)
	}
	u.Path = strings.TrimRight(u.Path, "/")

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: ksqlpipe.DefaultRequestTimeout},
		log:        logging.NewNullLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// NewClientForServer creates a client from a validated ServerConfig.
func NewClientForServer(cfg ksqlpipe.ServerConfig, log ksqlpipe.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []Option{WithLogger(log)}
	if cfg.Username != "" {
		opts = append(opts, WithBasicAuth(cfg.Username, cfg.Password))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, WithTimeout(cfg.Timeout))
	}

	return NewClient(cfg.URL, opts...)
}

// BaseURL returns the server base URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// executeRequest is the POST /ksql body.
type executeRequest struct {
	KSQL              string            `json:"ksql"`
	StreamsProperties map[string]string `json:"streamsProperties"`
}

// Execute submits one statement. A non-2xx HTTP status does not produce an
// error here: the status and decoded body are packaged into the Envelope and
// the fault decision is deferred to the caller. Only transport-level failures
// error, wrapped in ErrConnectionFailed.
func (c *Client) Execute(ctx context.Context, statement string, properties map[string]string) (*ksqlpipe.Envelope, error) {
	if properties == nil {
		properties = map[string]string{}
	}

	body, err := json.Marshal(executeRequest{KSQL: statement, StreamsProperties: properties})
	if err != nil {
		return nil, fmt.Errorf("failed to encode statement request: %w", err)
	}

	resp, raw, err := c.do(ctx, http.MethodPost, "/ksql", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	env := decodeEnvelope(resp.StatusCode, resp.Status, raw)
	c.log.Verbose("ksql response: HTTP %d, error_code=%d, commandId=%q",
		env.HTTPStatus, env.ErrorCode, env.CommandID)

	return env, nil
}

// Status fetches the status of an asynchronous command by id. Unlike Execute,
// a non-2xx here is an error: the status endpoint has no deferred-fault
// semantics.
//
// Command ids are multi-segment paths ("stream/CLICKSTREAM/create"), so the
// id is appended raw; do assigns it to the decoded Path field and the slashes
// must survive as separators.
func (c *Client) Status(ctx context.Context, commandID string) (*ksqlpipe.CommandStatus, error) {
	resp, raw, err := c.do(ctx, http.MethodGet, "/status/"+commandID, nil)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status query for command %q returned HTTP %d: %s", commandID, resp.StatusCode, firstLine(raw))
	}

	var status ksqlpipe.CommandStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("failed to decode status for command %q: %w", commandID, err)
	}

	return &status, nil
}

// Info fetches server build and cluster identity information.
func (c *Client) Info(ctx context.Context) (*ksqlpipe.ServerInfo, error) {
	resp, raw, err := c.do(ctx, http.MethodGet, "/info", nil)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("info query returned HTTP %d: %s", resp.StatusCode, firstLine(raw))
	}

	var wire struct {
		KsqlServerInfo ksqlpipe.ServerInfo `json:"KsqlServerInfo"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode server info: %w", err)
	}

	return &wire.KsqlServerInfo, nil
}

// do performs one HTTP round trip and returns the response plus fully-read
// body. Transport failures wrap ErrConnectionFailed.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, []byte, error) {
	reqURL := *c.baseURL
	reqURL.Path += path

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build %s %s request: %w", method, path, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", mediaType)
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", mediaType)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	c.log.Verbose("%s %s (request %s)", method, reqURL.String(), requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s failed: %v: %w", method, reqURL.String(), err, ksqlpipe.ErrConnectionFailed)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading response to %s %s: %v: %w", method, path, err, ksqlpipe.ErrConnectionFailed)
	}

	return resp, raw, nil
}

func firstLine(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return s
}
