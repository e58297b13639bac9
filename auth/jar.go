package auth

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// recordingJar is a cookie jar which remembers the attributes of the cookies it accepts,
// which cookiejar.Jar does not expose.
type recordingJar struct {
	*cookiejar.Jar
	m       sync.Mutex
	cookies map[string]Cookie
}

func newRecordingJar() (*recordingJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &recordingJar{Jar: jar, cookies: map[string]Cookie{}}, nil
}

// SetCookies implements http.CookieJar interface.
func (j *recordingJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.Jar.SetCookies(u, cookies)
	now := time.Now()
	j.m.Lock()
	defer j.m.Unlock()
	for _, c := range cookies {
		rc := Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   u.Hostname(),
			Path:     c.Path,
			Expires:  -1,
			HTTPOnly: c.HttpOnly,
			Secure:   c.Secure,
			SameSite: sameSiteString(c.SameSite),
		}
		if c.Domain != "" {
			rc.Domain = "." + strings.TrimPrefix(c.Domain, ".")
		}
		if rc.Path == "" || !strings.HasPrefix(rc.Path, "/") {
			rc.Path = defaultPath(u.Path)
		}
		key := rc.Domain + ";" + rc.Path + ";" + rc.Name
		switch {
		case c.MaxAge < 0:
			delete(j.cookies, key)
			continue
		case c.MaxAge > 0:
			rc.Expires = float64(now.Add(time.Duration(c.MaxAge) * time.Second).Unix())
		case !c.Expires.IsZero():
			if !c.Expires.After(now) {
				delete(j.cookies, key)
				continue
			}
			rc.Expires = float64(c.Expires.Unix())
		}
		j.cookies[key] = rc
	}
}

func (j *recordingJar) state() *StorageState {
	j.m.Lock()
	defer j.m.Unlock()
	keys := make([]string, 0, len(j.cookies))
	for k := range j.cookies {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := &StorageState{
		Cookies: make([]Cookie, 0, len(keys)),
		Origins: []Origin{},
	}
	for _, k := range keys {
		s.Cookies = append(s.Cookies, j.cookies[k])
	}
	return s
}

// defaultPath returns the default cookie path of a request path (RFC 6265 section 5.1.4).
func defaultPath(path string) string {
	if path == "" || path[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(path, "/")
	if i == 0 {
		return "/"
	}
	return path[:i]
}
