package auth

import (
	"context"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kycflow/kycflow/errors"
	kychttp "github.com/kycflow/kycflow/protocol/http"
)

// SessionProvider provides a browser session.
// The session is saved to Path and reused by later runs while its cookies are valid.
// Concurrent scenarios share a single login; Path has a single writer.
type SessionProvider struct {
	Path     string
	Login    *FormLogin
	Username string
	Password string
	// Force signs in again even when a valid session is saved.
	Force bool

	m     sync.Mutex
	state *StorageState
	group singleflight.Group
	now   func() time.Time
}

// Acquire returns a valid session, signing in if needed.
func (p *SessionProvider) Acquire(ctx context.Context) (*StorageState, error) {
	v, err, _ := p.group.Do("session", func() (any, error) {
		now := nowFunc(p.now)
		p.m.Lock()
		state := p.state
		p.m.Unlock()
		if state.Valid(now) {
			return state, nil
		}
		if !p.Force && p.Path != "" {
			s, err := LoadStorageState(p.Path)
			switch {
			case err == nil && s.Valid(now):
				p.setState(s)
				return s, nil
			case err != nil && !errors.Is(err, os.ErrNotExist):
				return nil, errors.Auth(err)
			}
		}
		if p.Login == nil {
			return nil, errors.Authf("no valid session at %q and login is not configured", p.Path)
		}
		if p.Username == "" || p.Password == "" {
			return nil, errors.Authf("username and password are required to sign in")
		}
		s, err := p.Login.Login(ctx, p.Username, p.Password)
		if err != nil {
			return nil, err
		}
		if p.Path != "" {
			if err := s.Save(p.Path); err != nil {
				return nil, err
			}
		}
		p.setState(s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*StorageState), nil
}

func (p *SessionProvider) setState(s *StorageState) {
	p.m.Lock()
	defer p.m.Unlock()
	p.state = s
}

// Credential implements Provider interface.
func (p *SessionProvider) Credential(ctx context.Context) (kychttp.Credential, error) {
	s, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}
