package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kycflow/kycflow/errors"
	kychttp "github.com/kycflow/kycflow/protocol/http"
)

// ClientCredentials acquires a token with the OAuth2 client credentials grant.
type ClientCredentials struct {
	// Issuer is the base URL of the identity provider, e.g. "https://gateway/auth".
	Issuer       string
	Realm        string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client

	now func() time.Time
}

// TokenPath returns the path of the token endpoint of realm.
func TokenPath(realm string) string {
	return fmt.Sprintf("/realms/%s/protocol/openid-connect/token", url.PathEscape(realm))
}

// Acquire requests a new token.
// It returns an AuthError if the response is not ok or has no access_token.
func (c *ClientCredentials) Acquire(ctx context.Context) (*BearerToken, error) {
	client, err := kychttp.NewClient(c.Issuer, kychttp.WithHTTPClient(c.HTTPClient))
	if err != nil {
		return nil, errors.Auth(err)
	}
	res, err := client.Do(ctx, &kychttp.Request{
		Method: http.MethodPost,
		Path:   TokenPath(c.Realm),
		Header: http.Header{"Content-Type": []string{"application/x-www-form-urlencoded"}},
		Body: url.Values{
			"grant_type":    []string{"client_credentials"},
			"client_id":     []string{c.ClientID},
			"client_secret": []string{c.ClientSecret},
		},
	})
	if err != nil {
		return nil, errors.Auth(err)
	}
	if !res.OK() {
		return nil, errors.Authf("token endpoint returned %q: %s", res.Status, res.Raw)
	}
	body, ok := res.Body.(map[string]any)
	if !ok {
		return nil, errors.Authf("unexpected token response: %s", res.Raw)
	}
	token, _ := body["access_token"].(string)
	if token == "" {
		return nil, errors.Authf("token response has no access_token")
	}
	return NewBearerToken(token, nowFunc(c.now))
}

// Credential implements Provider interface.
func (c *ClientCredentials) Credential(ctx context.Context) (kychttp.Credential, error) {
	return credential(c.Acquire(ctx))
}
