package executor

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/holps-7/striko/pkg/model"
)

// applyAuth adds the credentials of the request's auth variant. Query-located
// API keys are already in the URL by the time this runs.
func (e *Executor) applyAuth(ctx context.Context, httpReq *http.Request, auth model.Auth) error {
	switch a := auth.(type) {
	case nil, model.NoAuth:
		return nil

	case model.BasicAuth:
		// Partial credentials are ignored.
		if a.Complete() {
			removeHeader(httpReq.Header, "Authorization")
			httpReq.SetBasicAuth(a.Username, a.Password)
		}
		return nil

	case model.BearerAuth:
		// Set even when the token is empty, which yields "Bearer ".
		setHeader(httpReq.Header, "Authorization", "Bearer "+a.Token)
		return nil

	case model.APIKeyAuth:
		if a.Complete() && a.Location == model.APIKeyInHeader {
			setHeader(httpReq.Header, a.Key, a.Value)
		}
		return nil

	case model.OAuth2Auth:
		if !a.Complete() {
			return nil
		}
		token, err := e.oauth2Token(ctx, a)
		if err != nil {
			return fmt.Errorf("oauth2 token request failed: %w", err)
		}
		setHeader(httpReq.Header, "Authorization", token.Type()+" "+token.AccessToken)
		return nil

	default:
		return fmt.Errorf("unsupported auth type %q", auth.Type())
	}
}

// oauth2Token runs the client-credentials grant through the executor's own
// HTTP client.
func (e *Executor) oauth2Token(ctx context.Context, a model.OAuth2Auth) (*oauth2.Token, error) {
	config := &clientcredentials.Config{
		ClientID:     a.ClientID,
		ClientSecret: a.ClientSecret,
		TokenURL:     a.TokenURL,
		Scopes:       a.Scopes,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, e.client)
	return config.Token(ctx)
}

// setHeader replaces every header whose name matches key case-insensitively
// and stores value under the literal key.
func setHeader(h http.Header, key, value string) {
	removeHeader(h, key)
	h[key] = []string{value}
}

func removeHeader(h http.Header, key string) {
	for existing := range h {
		if strings.EqualFold(existing, key) {
			delete(h, existing)
		}
	}
}

func hasHeader(h http.Header, key string) bool {
	for existing := range h {
		if strings.EqualFold(existing, key) {
			return true
		}
	}
	return false
}
