// Package fixture provides read-only binary assets attached to requests.
package fixture

import (
	"io/fs"
	"mime"
	"os"
	"path"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kycflow/kycflow/errors"
)

// DefaultContentType is the content type of ID card images.
const DefaultContentType = "image/jpeg"

// Asset is an immutable binary file.
type Asset struct {
	Name        string
	ContentType string
	bytes       []byte
}

// Bytes returns a copy of the content.
func (a *Asset) Bytes() []byte {
	b := make([]byte, len(a.bytes))
	copy(b, a.bytes)
	return b
}

// Len returns the content length.
func (a *Asset) Len() int {
	return len(a.bytes)
}

// Store loads assets from a file system and caches them.
// It is safe for concurrent use.
type Store struct {
	fsys  fs.FS
	m     sync.RWMutex
	cache map[string]*Asset
	group singleflight.Group
}

// NewStore returns a store reading assets from fsys.
func NewStore(fsys fs.FS) *Store {
	return &Store{
		fsys:  fsys,
		cache: map[string]*Asset{},
	}
}

// NewDirStore returns a store reading assets under dir.
func NewDirStore(dir string) *Store {
	return NewStore(os.DirFS(dir))
}

// Load returns the asset called name.
// It returns a TransportError if the asset cannot be read.
func (s *Store) Load(name string) (*Asset, error) {
	s.m.RLock()
	a, ok := s.cache[name]
	s.m.RUnlock()
	if ok {
		return a, nil
	}
	v, err, _ := s.group.Do(name, func() (any, error) {
		b, err := fs.ReadFile(s.fsys, name)
		if err != nil {
			return nil, errors.Transport(errors.Wrapf(err, "failed to read fixture %q", name))
		}
		a := &Asset{
			Name:        path.Base(name),
			ContentType: contentType(name),
			bytes:       b,
		}
		s.m.Lock()
		s.cache[name] = a
		s.m.Unlock()
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Asset), nil
}

func contentType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return DefaultContentType
}
