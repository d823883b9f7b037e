package post

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/crimson-sun/timeline/internal/metrics"
	"github.com/crimson-sun/timeline/internal/render"
)

const (
	defaultTimeout = 10 * time.Second
	defaultBackoff = time.Second
	maxRetries     = 3
)

// Option configures a post Output.
type Option func(*Output)

// WithHeaders sets custom HTTP headers sent with every POST.
func WithHeaders(h map[string]string) Option {
	return func(o *Output) { o.headers = h }
}

// WithFormat sets the encoding of the uploaded chart. Default: png.
func WithFormat(format string) Option {
	return func(o *Output) { o.format = format }
}

// WithTimeout sets the HTTP client timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return func(o *Output) { o.client.Timeout = d }
}

// WithBackoff sets the first retry delay; later retries double it.
// Default: 1s.
func WithBackoff(d time.Duration) Option {
	return func(o *Output) { o.backoff = d }
}

// WithMetrics counts every chart uploaded.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Output) { o.metrics = m }
}

// Output uploads the encoded chart to an HTTP endpoint with a single POST.
// Retries on 5xx with exponential backoff.
type Output struct {
	client  *http.Client
	url     string
	format  string
	headers map[string]string
	backoff time.Duration
	metrics *metrics.Metrics
}

// New creates a post output targeting url.
func New(url string, opts ...Option) *Output {
	o := &Output{
		client:  &http.Client{Timeout: defaultTimeout},
		url:     url,
		format:  render.FormatPNG,
		backoff: defaultBackoff,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Write encodes the chart and POSTs it.
func (o *Output) Write(ctx context.Context, chart *render.Chart) error {
	var buf bytes.Buffer
	if err := chart.Encode(&buf, o.format); err != nil {
		return fmt.Errorf("post output: %w", err)
	}
	if err := o.postWithRetry(ctx, buf.Bytes()); err != nil {
		return err
	}
	if o.metrics != nil {
		o.metrics.ChartsRendered.WithLabelValues(o.format).Inc()
	}
	slog.Info("chart posted", "url", o.url, "format", o.format, "bytes", buf.Len())
	return nil
}

// Close is a no-op; each Write is a complete upload.
func (o *Output) Close() error { return nil }

// postWithRetry sends the body via HTTP POST with retry on 5xx.
func (o *Output) postWithRetry(ctx context.Context, body []byte) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			t := time.NewTimer(o.backoff << (attempt - 1))
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post output: %w", err)
		}
		req.Header.Set("Content-Type", render.ContentType(o.format))
		for k, v := range o.headers {
			req.Header.Set(k, v)
		}

		resp, err := o.client.Do(req)
		if err != nil {
			return fmt.Errorf("post output: %w", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		lastErr = fmt.Errorf("post output: HTTP %d", resp.StatusCode)

		// Only retry on 5xx server errors.
		if resp.StatusCode < 500 {
			return lastErr
		}
	}
	return lastErr
}
