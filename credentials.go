package kycflow

import (
	"net/http"

	"github.com/kycflow/kycflow/auth"
	"github.com/kycflow/kycflow/errors"
	"github.com/kycflow/kycflow/fixture"
	kychttp "github.com/kycflow/kycflow/protocol/http"
	"github.com/kycflow/kycflow/schema"
	"github.com/kycflow/kycflow/service/casekeeper"
	"github.com/kycflow/kycflow/service/kyccore"
)

// CredentialProvider returns the credential provider of t.
// Targets authenticated with a session share session, which is created if nil.
func CredentialProvider(cfg *schema.Config, t *schema.Target, session *auth.SessionProvider, hc *http.Client) (auth.Provider, error) {
	switch t.Auth {
	case schema.AuthNone, "":
		return nil, nil
	case schema.AuthStatic:
		if cfg.Auth.PrivateKey == "" {
			return nil, errors.Authf("target %s: private key is not configured", t.Name)
		}
		return &auth.StaticToken{Token: cfg.Auth.PrivateKey}, nil
	case schema.AuthClientCredentials:
		return &auth.ClientCredentials{
			Issuer:       t.IssuerURL(cfg.Auth.Issuer),
			Realm:        cfg.Auth.Realm,
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
			HTTPClient:   hc,
		}, nil
	case schema.AuthSession:
		if session != nil {
			return session, nil
		}
		var transport http.RoundTripper
		if hc != nil {
			transport = hc.Transport
		}
		return NewSessionProvider(cfg, false, transport), nil
	default:
		return nil, errors.Errorf("target %s: unknown auth mode %q", t.Name, t.Auth)
	}
}

// NewSessionProvider returns the session provider signing in through the login page of cfg.
func NewSessionProvider(cfg *schema.Config, force bool, transport http.RoundTripper) *auth.SessionProvider {
	return &auth.SessionProvider{
		Path: cfg.ResolvePath(cfg.Login.StorageState),
		Login: &auth.FormLogin{
			LoginURL:   cfg.Login.URL,
			SuccessURL: cfg.Login.SuccessURL,
			Timeout:    cfg.Login.Timeout.Std(),
			Transport:  transport,
		},
		Username: cfg.Login.Username,
		Password: cfg.Login.Password,
		Force:    force,
	}
}

func kycCoreClient(t *schema.Target, store *fixture.Store, opts ...kychttp.ClientOption) (*kyccore.Client, error) {
	c, err := kyccore.New(t.KYCCoreURL(), store, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create the verification client")
	}
	return c, nil
}

func caseKeeperClient(t *schema.Target, opts ...kychttp.ClientOption) (*casekeeper.Client, error) {
	c, err := casekeeper.New(t.CaseKeeperURL(), opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create the case client")
	}
	return c, nil
}
