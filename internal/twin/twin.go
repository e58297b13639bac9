// Package twin implements an in-memory behavioral twin of the services a scenario talks to:
// the token issuer, the case service, the verification service and the login page.
// The routes are served both at the root and under the gateway prefixes.
package twin

import (
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Gateway prefixes of the services.
const (
	AuthPrefix       = "/auth"
	KYCPrefix        = "/api/v1/kyc"
	CaseKeeperPrefix = "/api/v2/case-keeper"
)

// Options configures a Twin.
type Options struct {
	Realm        string
	ClientID     string
	ClientSecret string
	// PrivateKey is the static key accepted to create verifications directly.
	// Creating verifications requires no credential if it is empty.
	PrivateKey string
	Username   string
	Password   string
	// SigningKey signs the issued tokens.
	SigningKey []byte
	// TokenTTL defaults to 5 minutes.
	TokenTTL time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
	// LogWriter enables request logging.
	LogWriter io.Writer
}

// Twin is the behavioral twin.
type Twin struct {
	opts   Options
	store  *memoryStore
	faultM sync.Mutex
	faults []Fault
}

// New returns a new Twin.
func New(opts Options) *Twin {
	if opts.Realm == "" {
		opts.Realm = "mac-portal"
	}
	if len(opts.SigningKey) == 0 {
		opts.SigningKey = []byte("twin-signing-key")
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Twin{
		opts:  opts,
		store: newMemoryStore(),
	}
}

// Handler returns the HTTP handler of t.
func (t *Twin) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if t.opts.LogWriter != nil {
		r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
			Logger:  log.New(t.opts.LogWriter, "", log.LstdFlags),
			NoColor: true,
		}))
	}
	r.Use(t.faultInjection)

	r.Route("/admin", t.adminRoutes)
	r.Group(t.tokenRoutes)
	r.Route(AuthPrefix, t.tokenRoutes)
	r.Group(t.kycRoutes)
	r.Route(KYCPrefix, t.kycRoutes)
	r.Group(t.caseRoutes)
	r.Route(CaseKeeperPrefix, t.caseRoutes)
	r.Group(t.loginRoutes)
	return r
}

// Verification returns the verification id.
func (t *Twin) Verification(id string) (*Verification, bool) {
	return t.store.verification(id)
}

// Reset clears all state and faults.
func (t *Twin) Reset() {
	t.store.reset()
	t.ClearFaults()
}

func (t *Twin) now() time.Time {
	return t.opts.Now()
}

// servicePath returns the path of r without the gateway prefix.
func servicePath(p string) string {
	for _, prefix := range []string{AuthPrefix, KYCPrefix, CaseKeeperPrefix} {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return strings.TrimPrefix(p, prefix)
		}
	}
	return p
}
