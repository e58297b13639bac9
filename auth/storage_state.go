package auth

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kycflow/kycflow/errors"
)

// StorageState is a snapshot of a browser session.
// It has the same JSON shape as the storage state written by browser automation tools
// so that both can share a state file.
type StorageState struct {
	Cookies []Cookie `json:"cookies"`
	Origins []Origin `json:"origins"`
}

// Cookie is a cookie of StorageState.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	// Domain starts with "." if the cookie is sent to subdomains too.
	Domain string `json:"domain"`
	Path   string `json:"path"`
	// Expires is a Unix time in seconds. -1 means a session cookie.
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

// Origin holds the local storage of an origin.
type Origin struct {
	Origin       string      `json:"origin"`
	LocalStorage []NameValue `json:"localStorage"`
}

// NameValue is a local storage entry.
type NameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LoadStorageState reads the state saved at path.
func LoadStorageState(path string) (*StorageState, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read storage state")
	}
	var s StorageState
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, errors.Wrapf(err, "invalid storage state %s", path)
	}
	return &s, nil
}

// Save writes s to path atomically.
// Readers never observe a partially written file.
func (s *StorageState) Save(path string) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal storage state")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "failed to create storage state directory")
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary file")
	}
	tmp := f.Name()
	defer os.Remove(tmp)
	if _, err := f.Write(b); err != nil {
		f.Close()
		return errors.Wrap(err, "failed to write storage state")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "failed to write storage state")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "failed to save storage state")
	}
	return nil
}

// Valid reports whether s has cookies and none of them has expired at now.
func (s *StorageState) Valid(now time.Time) bool {
	if s == nil || len(s.Cookies) == 0 {
		return false
	}
	for _, c := range s.Cookies {
		if c.Expires > 0 && !now.Before(time.Unix(int64(c.Expires), 0)) {
			return false
		}
	}
	return true
}

// Apply implements http.Credential interface.
// It attaches the cookies which would be sent to the request URL.
func (s *StorageState) Apply(req *http.Request) error {
	jar, err := s.Jar()
	if err != nil {
		return err
	}
	for _, c := range jar.Cookies(req.URL) {
		req.AddCookie(c)
	}
	return nil
}

// Jar returns a cookie jar holding the cookies of s.
func (s *StorageState) Jar() (http.CookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cookie jar")
	}
	for _, c := range s.Cookies {
		scheme := "http"
		if c.Secure {
			scheme = "https"
		}
		host := strings.TrimPrefix(c.Domain, ".")
		u := &url.URL{Scheme: scheme, Host: host, Path: c.Path}
		hc := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
			SameSite: sameSite(c.SameSite),
		}
		// A host-only cookie must not have the Domain attribute.
		if strings.HasPrefix(c.Domain, ".") {
			hc.Domain = host
		}
		if c.Expires > 0 {
			hc.Expires = time.Unix(int64(c.Expires), 0)
		}
		jar.SetCookies(u, []*http.Cookie{hc})
	}
	return jar, nil
}

func sameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	case "lax":
		return http.SameSiteLaxMode
	default:
		return http.SameSiteDefaultMode
	}
}

func sameSiteString(s http.SameSite) string {
	switch s {
	case http.SameSiteStrictMode:
		return "Strict"
	case http.SameSiteNoneMode:
		return "None"
	default:
		return "Lax"
	}
}
