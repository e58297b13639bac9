package fixture

import (
	"sync"
	"testing"
	"testing/fstest"

	"github.com/kycflow/kycflow/errors"
)

func TestStoreLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"images/front.jpg": {Data: []byte{0xff, 0xd8, 0xff}},
		"images/back":      {Data: []byte{0xff, 0xd8}},
	}
	s := NewStore(fsys)

	tests := map[string]struct {
		name        string
		expectName  string
		contentType string
		length      int
	}{
		"jpeg": {
			name:        "images/front.jpg",
			expectName:  "front.jpg",
			contentType: "image/jpeg",
			length:      3,
		},
		"no extension": {
			name:        "images/back",
			expectName:  "back",
			contentType: DefaultContentType,
			length:      2,
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			a, err := s.Load(test.name)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if a.Name != test.expectName {
				t.Errorf("expected name %q but got %q", test.expectName, a.Name)
			}
			if a.ContentType != test.contentType {
				t.Errorf("expected content type %q but got %q", test.contentType, a.ContentType)
			}
			if a.Len() != test.length || len(a.Bytes()) != test.length {
				t.Errorf("expected length %d but got %d", test.length, a.Len())
			}
		})
	}

	t.Run("immutable", func(t *testing.T) {
		a, err := s.Load("images/front.jpg")
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		b := a.Bytes()
		b[0] = 0
		if a.Bytes()[0] != 0xff {
			t.Fatal("asset content must not be modified")
		}
	})

	t.Run("concurrent", func(t *testing.T) {
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.Load("images/front.jpg"); err != nil {
					t.Errorf("unexpected error: %s", err)
				}
			}()
		}
		wg.Wait()
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.Load("images/missing.jpg")
		if err == nil {
			t.Fatal("expected error but no error")
		}
		if got := errors.KindOf(err); got != errors.KindTransport {
			t.Errorf("expected transport error but got %v", got)
		}
	})
}
