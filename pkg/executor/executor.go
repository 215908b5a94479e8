// Package executor performs exactly one HTTP exchange per request and turns
// the outcome, success or failure, into a model.Response.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/holps-7/striko/pkg/model"
)

// Executor sends requests. It has no timeout, no retries and follows the
// transport's default redirect policy; every status code is a completed
// exchange.
type Executor struct {
	client    *http.Client
	userAgent string
	now       func() time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Executor) {
		if c != nil {
			e.client = c
		}
	}
}

// WithUserAgent sets a User-Agent for requests that do not carry one.
func WithUserAgent(ua string) Option {
	return func(e *Executor) {
		e.userAgent = ua
	}
}

// New creates an Executor.
func New(opts ...Option) *Executor {
	e := &Executor{
		client: &http.Client{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute sends req and never fails: a request that cannot be built or sent
// comes back with status 0, "Network Error" and the reason in data.error.
func (e *Executor) Execute(ctx context.Context, req model.Request) model.Response {
	start := e.now()

	httpReq, err := e.build(ctx, req)
	if err != nil {
		return model.NetworkError(err, e.now().Sub(start))
	}

	httpResp, err := e.client.Do(httpReq)
	if err != nil {
		return model.NetworkError(err, e.now().Sub(start))
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return model.NetworkError(fmt.Errorf("failed to read response: %w", err), e.now().Sub(start))
	}
	elapsed := e.now().Sub(start)

	data, size := decodeBody(raw)

	headers := make(map[string]string, len(httpResp.Header))
	for key, values := range httpResp.Header {
		headers[key] = strings.Join(values, ", ")
	}

	return model.Response{
		Status:     httpResp.StatusCode,
		StatusText: statusText(httpResp),
		Headers:    headers,
		Data:       data,
		Time:       elapsed.Milliseconds(),
		Size:       size,
	}
}

// build assembles the outbound request: URL and query first, then headers,
// then auth overrides.
func (e *Executor) build(ctx context.Context, req model.Request) (*http.Request, error) {
	query := req.Params.Clone()
	if key, ok := req.Auth.(model.APIKeyAuth); ok && key.Complete() && key.Location == model.APIKeyInQuery {
		query.Add(key.Key, key.Value)
	}

	target, err := BuildURL(req.URL, query)
	if err != nil {
		return nil, err
	}

	body, isJSON, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, model.NormalizeMethod(req.Method), target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range req.Headers {
		httpReq.Header[key] = []string{value}
	}
	if isJSON && !hasHeader(httpReq.Header, "Content-Type") {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if e.userAgent != "" && !hasHeader(httpReq.Header, "User-Agent") {
		httpReq.Header.Set("User-Agent", e.userAgent)
	}

	if err := e.applyAuth(ctx, httpReq, req.Auth); err != nil {
		return nil, err
	}
	return httpReq, nil
}

// encodeBody passes text through as-is and JSON-encodes anything else.
func encodeBody(body any) (io.Reader, bool, error) {
	switch b := body.(type) {
	case nil:
		return nil, false, nil
	case string:
		return strings.NewReader(b), false, nil
	case []byte:
		return bytes.NewReader(b), false, nil
	case json.RawMessage:
		return bytes.NewReader(b), true, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, false, fmt.Errorf("failed to marshal body: %w", err)
		}
		return bytes.NewReader(data), true, nil
	}
}

// decodeBody parses a JSON body when it is valid JSON and measures it the
// way it will be displayed.
func decodeBody(raw []byte) (any, int) {
	if len(bytes.TrimSpace(raw)) > 0 {
		var v any
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, Size(v)
		}
	}
	text := string(raw)
	return text, len(text)
}

// Size is the UTF-8 byte length of a body: literal text for strings,
// compact JSON for anything else.
func Size(v any) int {
	if s, ok := v.(string); ok {
		return len(s)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return 0
	}
	return len(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
