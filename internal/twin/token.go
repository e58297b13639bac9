package twin

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (t *Twin) tokenRoutes(r chi.Router) {
	r.Post("/realms/{realm}/protocol/openid-connect/token", t.IssueToken)
}

// IssueToken handles POST /realms/{realm}/protocol/openid-connect/token.
// Only the client credentials grant is supported.
func (t *Twin) IssueToken(w http.ResponseWriter, r *http.Request) {
	if realm := chi.URLParam(r, "realm"); realm != t.opts.Realm {
		writeError(w, http.StatusNotFound, "realm not found")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	if gt := r.PostForm.Get("grant_type"); gt != "client_credentials" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unsupported_grant_type"})
		return
	}
	if r.PostForm.Get("client_id") != t.opts.ClientID || r.PostForm.Get("client_secret") != t.opts.ClientSecret {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid_client"})
		return
	}
	tok, err := t.issue(r.PostForm.Get("client_id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: tok,
		TokenType:   "Bearer",
		ExpiresIn:   int(t.opts.TokenTTL.Seconds()),
	})
}

func (t *Twin) issue(subject string) (string, error) {
	now := t.now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    AuthPrefix + "/realms/" + t.opts.Realm,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.opts.TokenTTL)),
	}).SignedString(t.opts.SigningKey)
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// validToken reports whether tok is a token issued by t and not expired.
func (t *Twin) validToken(tok string) bool {
	if tok == "" {
		return false
	}
	_, err := jwt.Parse(tok, func(*jwt.Token) (any, error) {
		return t.opts.SigningKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.opts.Now), jwt.WithExpirationRequired())
	return err == nil
}

// authorized reports whether r carries an issued token or a signed-in session.
// The private key is accepted too when allowPrivateKey is set.
func (t *Twin) authorized(r *http.Request, allowPrivateKey bool) bool {
	tok := bearer(r)
	if allowPrivateKey && t.opts.PrivateKey != "" && tok == t.opts.PrivateKey {
		return true
	}
	if t.validToken(tok) {
		return true
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		if _, ok := t.store.session(c.Value); ok {
			return true
		}
	}
	return false
}
