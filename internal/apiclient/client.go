// Package apiclient is the authenticated request client for the backend
// REST API. Every call goes to one fixed base URL, carries the session's
// bearer token when there is one, and decodes and validates the JSON reply.
// The client performs no retries and sets no timeout of its own.
package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/ashureev/castline/internal/validation"
	"github.com/goccy/go-json"
)

const maxResponseBytes = 10 << 20

// TokenSource supplies the current bearer token; "" means no session.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// Token implements TokenSource.
func (f TokenFunc) Token() string { return f() }

// Client issues requests against a fixed API base URL.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for base (e.g. "http://localhost:5000/api") that reads
// bearer tokens from tokens. tokens may be nil for unauthenticated use.
func New(base string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		base:   strings.TrimRight(base, "/"),
		http:   &http.Client{},
		tokens: tokens,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API base the client was built with.
func (c *Client) BaseURL() string { return c.base }

// Request describes one API call.
type Request struct {
	Method string
	Path   string // relative to the base, e.g. "/posts"
	Query  url.Values
	Body   any // JSON-encoded when non-nil
	Form   *Form
	// Auth makes the call fail with ErrAuthRequired, without touching the
	// network, when there is no token.
	Auth bool
}

// Form is a multipart/form-data body.
type Form struct {
	Fields map[string]string
	Files  []FormFile
}

// FormFile is one file part of a Form.
type FormFile struct {
	Field       string
	Name        string
	ContentType string
	Content     io.Reader
}

// Do performs req and decodes the response body into out (which may be nil).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	token := ""
	if c.tokens != nil {
		token = c.tokens.Token()
	}
	if req.Auth && token == "" {
		return ErrAuthRequired
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return err
	}

	target := c.base + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", req.Method, req.Path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, req.Method, req.Path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("Failed to close response body", "error", closeErr)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %w", ErrTransport, req.Method, req.Path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{
			Status:  resp.StatusCode,
			Message: serverMessage(raw),
			Method:  req.Method,
			Path:    req.Path,
		}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 && resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &SchemaError{Path: req.Path, Err: err}
	}
	if err := validation.Value(out); err != nil {
		return &SchemaError{Path: req.Path, Err: err}
	}
	return nil
}

func encodeBody(req Request) (io.Reader, string, error) {
	switch {
	case req.Form != nil:
		return encodeForm(req.Form)
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", fmt.Errorf("encode %s %s body: %w", req.Method, req.Path, err)
		}
		return bytes.NewReader(data), "application/json", nil
	default:
		return nil, "", nil
	}
}

func encodeForm(form *Form) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range form.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write form field %q: %w", k, err)
		}
	}
	for _, f := range form.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Name))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create form file %q: %w", f.Field, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("copy form file %q: %w", f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// serverMessage extracts {"message": "..."} (or {"error": "..."}) from an error body.
func serverMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// get and friends keep the endpoint files short.

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query, Auth: true}, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	return c.Do(ctx, Request{Method: method, Path: path, Body: body, Auth: true}, out)
}

func (c *Client) upload(ctx context.Context, method, path string, form *Form, out any) error {
	return c.Do(ctx, Request{Method: method, Path: path, Form: form, Auth: true}, out)
}

func escape(id string) string { return url.PathEscape(id) }
