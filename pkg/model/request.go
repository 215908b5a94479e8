// Package model holds the request, collection, environment and response
// shapes shared by the executor, the stores and the session.
package model

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// HTTP methods offered by the request panel.
const (
	MethodGet     = "GET"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodDelete  = "DELETE"
	MethodPatch   = "PATCH"
	MethodHead    = "HEAD"
	MethodOptions = "OPTIONS"
)

// Methods lists the supported methods in panel order.
var Methods = []string{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch, MethodHead, MethodOptions}

// BodyType is a UI hint for how the body is edited. The executor ignores it.
type BodyType string

const (
	BodyNone BodyType = "none"
	BodyJSON BodyType = "json"
	BodyForm BodyType = "form"
	BodyText BodyType = "text"
)

// Request is a user-editable HTTP request.
type Request struct {
	ID       string            `json:"id"`                 // Immutable once assigned
	Name     string            `json:"name"`               // Display name
	URL      string            `json:"url"`                // May be partial or invalid while editing
	Method   string            `json:"method"`             // One of Methods
	Headers  map[string]string `json:"headers"`            // Literal header names
	Body     any               `json:"body,omitempty"`     // JSON value or text
	BodyType BodyType          `json:"bodyType,omitempty"` // UI hint only
	Params   KeyValues         `json:"params"`             // Appended to the query in order
	Auth     Auth              `json:"-"`                  // Encoded as "auth" by MarshalJSON
	Tests    string            `json:"tests,omitempty"`    // Stored, never executed here
	PreRun   string            `json:"preRun,omitempty"`   // Stored, never executed here
}

// NewRequest returns the blank request a fresh panel starts with.
func NewRequest() Request {
	return Request{
		ID:       uuid.NewString(),
		Name:     "New Request",
		Method:   MethodGet,
		Headers:  map[string]string{},
		Params:   KeyValues{},
		BodyType: BodyNone,
	}
}

// NormalizeMethod upper-cases m and defaults to GET.
func NormalizeMethod(m string) string {
	m = strings.ToUpper(strings.TrimSpace(m))
	if m == "" {
		return MethodGet
	}
	return m
}

// Clone returns a deep copy: later edits to r never show up in the copy.
func (r Request) Clone() Request {
	out := r
	if r.Headers != nil {
		out.Headers = make(map[string]string, len(r.Headers))
		for k, v := range r.Headers {
			out.Headers[k] = v
		}
	}
	out.Params = r.Params.Clone()
	out.Body = cloneValue(r.Body)
	out.Auth = cloneAuth(r.Auth)
	return out
}

// DisplayName is the name shown in lists, falling back to "METHOD url".
func (r Request) DisplayName() string {
	if r.Name != "" && r.Name != "New Request" {
		return r.Name
	}
	if r.URL == "" {
		return "New Request"
	}
	return NormalizeMethod(r.Method) + " " + strings.TrimPrefix(strings.TrimPrefix(r.URL, "https://"), "http://")
}

type requestFields Request

type requestJSON struct {
	requestFields
	Auth *authJSON `json:"auth,omitempty"`
}

// MarshalJSON encodes the request with its auth variant in the
// {"type", "credentials"} shape.
func (r Request) MarshalJSON() ([]byte, error) {
	return json.Marshal(requestJSON{requestFields: requestFields(r), Auth: encodeAuth(r.Auth)})
}

// UnmarshalJSON decodes a request, rejecting unknown auth types.
func (r *Request) UnmarshalJSON(data []byte) error {
	var raw requestJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	auth, err := decodeAuth(raw.Auth)
	if err != nil {
		return err
	}
	*r = Request(raw.requestFields)
	r.Auth = auth
	return nil
}

// cloneValue deep-copies the containers produced by encoding/json.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	case []byte:
		return append([]byte(nil), t...)
	case json.RawMessage:
		return append(json.RawMessage(nil), t...)
	default:
		return v
	}
}
