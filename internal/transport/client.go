// Package transport executes single registry calls and classifies the
// responses. GET parameters travel in the query string, POST and PUT
// parameters in a multipart form body.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/stelitsyn-sc/zappifest/internal/log"
	"github.com/stelitsyn-sc/zappifest/internal/params"
	"github.com/stelitsyn-sc/zappifest/internal/tracing"
)

// DefaultTimeout bounds every call, including reading the body.
const DefaultTimeout = 20 * time.Second

// Client performs one request per call and keeps no state between calls.
type Client struct {
	httpClient *http.Client
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-call timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// New creates a Client with DefaultTimeout.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		tracer:     tracing.Tracer("github.com/stelitsyn-sc/zappifest/internal/transport"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues a GET with p encoded in the query string.
func (c *Client) Get(ctx context.Context, rawURL string, p params.Params) (Outcome, error) {
	return c.Do(ctx, http.MethodGet, rawURL, p)
}

// Post issues a POST with p encoded as multipart form data.
func (c *Client) Post(ctx context.Context, rawURL string, p params.Params) (Outcome, error) {
	return c.Do(ctx, http.MethodPost, rawURL, p)
}

// Put issues a PUT with p encoded as multipart form data.
func (c *Client) Put(ctx context.Context, rawURL string, p params.Params) (Outcome, error) {
	return c.Do(ctx, http.MethodPut, rawURL, p)
}

// Do executes exactly one request. A returned error is always a
// *NetworkError or a request construction error; HTTP level failures are
// reported through the Outcome.
func (c *Client) Do(ctx context.Context, method, rawURL string, p params.Params) (Outcome, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Outcome{}, fmt.Errorf("parsing url: %w", err)
	}

	ctx, span := c.tracer.Start(ctx, tracing.SpanHTTPRequest,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(tracing.AttrHTTPMethod, method),
			attribute.String(tracing.AttrHTTPURLPath, u.Path),
		),
	)
	defer span.End()

	req, err := c.newRequest(ctx, method, u, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		netErr := &NetworkError{Method: method, Path: u.Path, Err: redact(err, u)}
		log.ErrorErr(log.CatHTTP, "Request failed", netErr, "method", method, "path", u.Path)
		span.RecordError(netErr)
		span.SetStatus(codes.Error, "network error")
		return Outcome{}, netErr
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		netErr := &NetworkError{Method: method, Path: u.Path, Err: fmt.Errorf("reading body: %w", err)}
		span.RecordError(netErr)
		span.SetStatus(codes.Error, "network error")
		return Outcome{}, netErr
	}

	out := classify(resp.StatusCode, statusMessage(resp), raw)
	log.Debug(log.CatHTTP, "Request done",
		"method", method,
		"path", u.Path,
		"status", resp.StatusCode,
		"outcome", out.Kind,
		"duration", time.Since(start))

	span.SetAttributes(
		attribute.Int(tracing.AttrHTTPStatusCode, resp.StatusCode),
		attribute.String(tracing.AttrOutcome, out.Kind.String()),
	)
	if out.OK() {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, out.Kind.String())
	}
	return out, nil
}

func (c *Client) newRequest(ctx context.Context, method string, u *url.URL, p params.Params) (*http.Request, error) {
	switch method {
	case http.MethodGet:
		target := *u
		target.RawQuery = encodeQuery(u.Query(), p)
		return http.NewRequestWithContext(ctx, method, target.String(), nil)
	case http.MethodPost, http.MethodPut:
		body, contentType, err := encodeMultipart(p)
		if err != nil {
			return nil, fmt.Errorf("encoding multipart body: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	default:
		return nil, fmt.Errorf("unsupported method %q", method)
	}
}

// encodeQuery merges p into the query already present on the URL. File
// values have no query form and are skipped.
func encodeQuery(q url.Values, p params.Params) string {
	for _, f := range p.Fields() {
		switch v := f.Value.(type) {
		case params.Text:
			q.Add(f.Key, string(v))
		case params.Bool:
			q.Add(f.Key, v.String())
		case params.List:
			for _, item := range v {
				q.Add(f.Key, item)
			}
		}
	}
	return q.Encode()
}

// redact drops the query string, and with it the access token, from url
// errors.
func redact(err error, u *url.URL) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	clean := *u
	clean.RawQuery = ""
	return &url.Error{Op: ue.Op, URL: clean.String(), Err: ue.Err}
}

func statusMessage(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}

func decodeJSON(raw []byte) (any, error) {
	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	return body, nil
}
