// Package auth provides the credentials used by scenarios.
// A credential is either a bearer token or a browser storage state.
package auth

import (
	"context"

	kychttp "github.com/kycflow/kycflow/protocol/http"
)

// Provider provides a credential which authorizes requests.
// A nil credential without error means requests are sent anonymously.
type Provider interface {
	Credential(ctx context.Context) (kychttp.Credential, error)
}

// Anonymous is a Provider which provides no credential.
type Anonymous struct{}

// Credential implements Provider interface.
func (Anonymous) Credential(context.Context) (kychttp.Credential, error) {
	return nil, nil
}
