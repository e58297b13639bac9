package auth

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/kycflow/kycflow/errors"
)

const (
	defaultLoginTimeout  = 30 * time.Second
	defaultPollInterval  = 500 * time.Millisecond
	usernameID           = "username"
	passwordID           = "password"
	maxLoginPageBodySize = 1 << 20
)

// FormLogin signs in through the login page of the identity provider.
// It opens LoginURL, waits for the form with #username and #password to render,
// submits it and expects to be redirected to SuccessURL.
type FormLogin struct {
	LoginURL   string
	SuccessURL string
	// Timeout bounds the whole login. It defaults to 30s.
	Timeout time.Duration
	// PollInterval is the interval to wait for the login form. It defaults to 500ms.
	PollInterval time.Duration
	Transport    http.RoundTripper
}

type loginForm struct {
	action   *url.URL
	method   string
	values   url.Values
	username string
	password string
}

type page struct {
	url  *url.URL
	body []byte
}

// Login signs in as username and returns the resulting session.
// It returns an AuthError if the form never renders or the redirect never occurs.
func (l *FormLogin) Login(ctx context.Context, username, password string) (*StorageState, error) {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = defaultLoginTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	jar, err := newRecordingJar()
	if err != nil {
		return nil, errors.Auth(err)
	}
	client := &http.Client{Jar: jar, Transport: l.Transport}

	form, err := l.waitForForm(ctx, client)
	if err != nil {
		return nil, errors.Auth(err)
	}
	form.values.Set(form.username, username)
	form.values.Set(form.password, password)

	landed, err := submit(ctx, client, form)
	if err != nil {
		return nil, errors.Auth(errors.Wrap(err, "failed to submit login form"))
	}
	if !l.succeeded(landed, form) {
		return nil, errors.Authf("login did not redirect to %s: landed on %s", l.SuccessURL, landed)
	}
	return jar.state(), nil
}

func (l *FormLogin) waitForForm(ctx context.Context, client *http.Client) (*loginForm, error) {
	interval := l.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	var (
		form    *loginForm
		lastErr error
	)
	op := func() error {
		p, err := get(ctx, client, l.LoginURL)
		if err != nil {
			lastErr = err
			return err
		}
		f, err := findLoginForm(p)
		if err != nil {
			lastErr = err
			return err
		}
		form = f
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(backoff.NewConstantBackOff(interval), ctx)); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return nil, errors.Wrapf(lastErr, "login form did not render at %s", l.LoginURL)
	}
	return form, nil
}

func (l *FormLogin) succeeded(landed *url.URL, form *loginForm) bool {
	if l.SuccessURL == "" {
		return !sameLocation(landed, form.action)
	}
	expected, err := url.Parse(l.SuccessURL)
	if err != nil {
		return false
	}
	return sameLocation(landed, expected)
}

func sameLocation(a, b *url.URL) bool {
	return strings.EqualFold(a.Scheme, b.Scheme) &&
		strings.EqualFold(a.Host, b.Host) &&
		strings.TrimSuffix(a.Path, "/") == strings.TrimSuffix(b.Path, "/")
}

func get(ctx context.Context, client *http.Client, rawURL string) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "text/html")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLoginPageBodySize))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, errors.Errorf("login page returned %q", resp.Status)
	}
	return &page{url: resp.Request.URL, body: body}, nil
}

func submit(ctx context.Context, client *http.Client, form *loginForm) (*url.URL, error) {
	var (
		req *http.Request
		err error
	)
	if form.method == http.MethodGet {
		u := *form.action
		u.RawQuery = form.values.Encode()
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, form.action.String(), strings.NewReader(form.values.Encode()))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Request.URL, nil
}

func findLoginForm(p *page) (*loginForm, error) {
	doc, err := html.Parse(bytes.NewReader(p.body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse login page")
	}
	for _, f := range findAll(doc, atom.Form) {
		form := &loginForm{values: url.Values{}}
		for _, in := range findAll(f, atom.Input) {
			name := attr(in, "name")
			switch attr(in, "id") {
			case usernameID:
				form.username = name
				continue
			case passwordID:
				form.password = name
				continue
			}
			if name == "" {
				continue
			}
			switch strings.ToLower(attr(in, "type")) {
			case "submit", "button", "image", "reset":
				continue
			case "checkbox", "radio":
				if !hasAttr(in, "checked") {
					continue
				}
			}
			form.values.Add(name, attr(in, "value"))
		}
		if form.username == "" || form.password == "" {
			continue
		}
		for _, b := range findAll(f, atom.Button) {
			t := strings.ToLower(attr(b, "type"))
			if (t == "" || t == "submit") && attr(b, "name") != "" {
				form.values.Set(attr(b, "name"), attr(b, "value"))
				break
			}
		}
		action, err := p.url.Parse(attr(f, "action"))
		if err != nil {
			return nil, backoff.Permanent(errors.Wrap(err, "invalid form action"))
		}
		form.action = action
		form.method = http.MethodPost
		if strings.EqualFold(attr(f, "method"), http.MethodGet) {
			form.method = http.MethodGet
		}
		return form, nil
	}
	return nil, errors.Errorf("no form with #%s and #%s", usernameID, passwordID)
}

func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var nodes []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == a {
			nodes = append(nodes, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return nodes
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
