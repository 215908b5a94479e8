package model

import (
	"encoding/json"
	"fmt"
)

// AuthType names an authentication variant on the wire.
type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthBasic  AuthType = "basic"
	AuthBearer AuthType = "bearer"
	AuthAPIKey AuthType = "apikey"
	AuthOAuth2 AuthType = "oauth2"
)

// APIKeyLocation says where an API key is sent.
type APIKeyLocation string

const (
	APIKeyInHeader APIKeyLocation = "header"
	APIKeyInQuery  APIKeyLocation = "query"
)

// Auth is the closed set of authentication variants a Request can carry:
// NoAuth, BasicAuth, BearerAuth, APIKeyAuth and OAuth2Auth. The unexported
// method keeps other packages from adding variants, so a type switch over
// these five is exhaustive.
type Auth interface {
	Type() AuthType
	isAuth()
}

// NoAuth sends no credentials.
type NoAuth struct{}

// BasicAuth is applied only when both fields are non-empty.
type BasicAuth struct {
	Username string
	Password string
}

// BearerAuth always produces an Authorization header, even with an empty token.
type BearerAuth struct {
	Token string
}

// APIKeyAuth is applied only when Key, Value and Location are all set.
type APIKeyAuth struct {
	Key      string
	Value    string
	Location APIKeyLocation
}

// OAuth2Auth obtains a token with the client-credentials grant before each send.
type OAuth2Auth struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

func (NoAuth) Type() AuthType     { return AuthNone }
func (BasicAuth) Type() AuthType  { return AuthBasic }
func (BearerAuth) Type() AuthType { return AuthBearer }
func (APIKeyAuth) Type() AuthType { return AuthAPIKey }
func (OAuth2Auth) Type() AuthType { return AuthOAuth2 }

func (NoAuth) isAuth()     {}
func (BasicAuth) isAuth()  {}
func (BearerAuth) isAuth() {}
func (APIKeyAuth) isAuth() {}
func (OAuth2Auth) isAuth() {}

// Complete reports whether both credentials are present.
func (a BasicAuth) Complete() bool {
	return a.Username != "" && a.Password != ""
}

// Complete reports whether key, value and a known location are present.
func (a APIKeyAuth) Complete() bool {
	if a.Key == "" || a.Value == "" {
		return false
	}
	return a.Location == APIKeyInHeader || a.Location == APIKeyInQuery
}

// Complete reports whether a token endpoint and client id are present.
func (a OAuth2Auth) Complete() bool {
	return a.TokenURL != "" && a.ClientID != ""
}

type authCredentials struct {
	Username     string         `json:"username,omitempty"`
	Password     string         `json:"password,omitempty"`
	Token        string         `json:"token,omitempty"`
	Key          string         `json:"key,omitempty"`
	Value        string         `json:"value,omitempty"`
	Location     APIKeyLocation `json:"location,omitempty"`
	TokenURL     string         `json:"tokenUrl,omitempty"`
	ClientID     string         `json:"clientId,omitempty"`
	ClientSecret string         `json:"clientSecret,omitempty"`
	Scopes       []string       `json:"scopes,omitempty"`
}

// authJSON is the persisted shape: {"type": "...", "credentials": {...}}.
type authJSON struct {
	Type        AuthType         `json:"type"`
	Credentials *authCredentials `json:"credentials,omitempty"`
}

func encodeAuth(a Auth) *authJSON {
	switch v := a.(type) {
	case nil:
		return nil
	case NoAuth:
		return &authJSON{Type: AuthNone}
	case BasicAuth:
		return &authJSON{Type: AuthBasic, Credentials: &authCredentials{Username: v.Username, Password: v.Password}}
	case BearerAuth:
		return &authJSON{Type: AuthBearer, Credentials: &authCredentials{Token: v.Token}}
	case APIKeyAuth:
		return &authJSON{Type: AuthAPIKey, Credentials: &authCredentials{Key: v.Key, Value: v.Value, Location: v.Location}}
	case OAuth2Auth:
		return &authJSON{Type: AuthOAuth2, Credentials: &authCredentials{
			TokenURL:     v.TokenURL,
			ClientID:     v.ClientID,
			ClientSecret: v.ClientSecret,
			Scopes:       append([]string(nil), v.Scopes...),
		}}
	default:
		panic(fmt.Sprintf("model: unhandled auth variant %T", a))
	}
}

// decodeAuth turns the wire shape back into a variant. A non-none type
// without a credentials object decodes to NoAuth: no credentials means
// nothing is applied on send.
func decodeAuth(w *authJSON) (Auth, error) {
	if w == nil {
		return nil, nil
	}
	if w.Type != AuthNone && w.Type != "" && w.Credentials == nil {
		return NoAuth{}, nil
	}

	c := w.Credentials
	switch w.Type {
	case AuthNone, "":
		return NoAuth{}, nil
	case AuthBasic:
		return BasicAuth{Username: c.Username, Password: c.Password}, nil
	case AuthBearer:
		return BearerAuth{Token: c.Token}, nil
	case AuthAPIKey:
		return APIKeyAuth{Key: c.Key, Value: c.Value, Location: c.Location}, nil
	case AuthOAuth2:
		var scopes []string
		if len(c.Scopes) > 0 {
			scopes = append(scopes, c.Scopes...)
		}
		return OAuth2Auth{
			TokenURL:     c.TokenURL,
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Scopes:       scopes,
		}, nil
	default:
		return nil, fmt.Errorf("unknown auth type %q", w.Type)
	}
}

// MarshalAuth encodes a single auth variant in the persisted shape.
func MarshalAuth(a Auth) ([]byte, error) {
	return json.Marshal(encodeAuth(a))
}

// UnmarshalAuth decodes a single auth variant from the persisted shape.
func UnmarshalAuth(data []byte) (Auth, error) {
	var w *authJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return decodeAuth(w)
}

func cloneAuth(a Auth) Auth {
	if o, ok := a.(OAuth2Auth); ok && o.Scopes != nil {
		o.Scopes = append([]string(nil), o.Scopes...)
		return o
	}
	return a
}
