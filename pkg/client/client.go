package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rmax-ai/streamsim/pkg/logging"
	"github.com/rmax-ai/streamsim/pkg/metrics"
	"github.com/rmax-ai/streamsim/pkg/simulation"
)

const (
	// DefaultEndpoint is the proxy's configuration endpoint on a local run.
	DefaultEndpoint = "http://localhost:8000/generateurl"
	// DefaultTimeout bounds a submission round trip.
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 512
)

// Client submits simulation configurations to the streaming proxy.
type Client struct {
	endpoint string
	http     *http.Client
	logger   logrus.FieldLogger
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a submission client for endpoint.
// endpoint defaults to DefaultEndpoint if empty.
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.WithComponent(c.logger, "client")
	return c
}

// Endpoint returns the configuration endpoint this client posts to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit posts the payload and returns the generated playback URL verbatim.
// There is no retry: a failed submission has to be resubmitted by the user.
func (c *Client) Submit(ctx context.Context, payload simulation.Payload) (string, error) {
	start := time.Now()
	url, err := c.submit(ctx, payload)
	metrics.SubmissionDuration.Observe(time.Since(start).Seconds())

	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	metrics.SubmissionsTotal.WithLabelValues(string(payload.Simulate), outcome).Inc()

	entry := c.logger.WithFields(logging.Fields{
		"variant":  payload.Simulate,
		"endpoint": c.endpoint,
		"elapsed":  time.Since(start).String(),
	})
	if err != nil {
		entry.WithError(err).Warn("submission_failed")
		return "", err
	}
	entry.WithField("generated_url", url).Info("submission_accepted")
	return url, nil
}

func (c *Client) submit(ctx context.Context, payload simulation.Payload) (string, error) {
	// 1. Serialize payload
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &SubmissionFailedError{Reason: "encode payload", Err: err}
	}

	// 2. Create request
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &SubmissionFailedError{Reason: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	// 3. Send request
	resp, err := c.http.Do(req)
	if err != nil {
		return "", &SubmissionFailedError{Reason: "proxy unreachable", Err: err}
	}
	defer resp.Body.Close()

	// 4. Handle status codes
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &SubmissionFailedError{
			StatusCode: resp.StatusCode,
			Reason:     "unexpected status",
			Err:        bodyError(snippet),
		}
	}

	// 5. Parse response
	var out GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &SubmissionFailedError{StatusCode: resp.StatusCode, Reason: "decode response", Err: err}
	}
	if strings.TrimSpace(out.GeneratedURL) == "" {
		return "", &SubmissionFailedError{StatusCode: resp.StatusCode, Reason: "response has no generatedUrl"}
	}

	return out.GeneratedURL, nil
}

func bodyError(snippet []byte) error {
	text := strings.TrimSpace(string(snippet))
	if text == "" {
		return nil
	}
	return errors.New(text)
}
