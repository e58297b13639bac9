package twin_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kycflow/kycflow/internal/twin"
)

type client struct {
	t   *testing.T
	srv *httptest.Server
}

type response struct {
	status int
	body   map[string]any
	raw    []byte
}

func setup(t *testing.T, opts twin.Options) (*twin.Twin, *client) {
	t.Helper()
	tw := twin.New(opts)
	srv := httptest.NewServer(tw.Handler())
	t.Cleanup(srv.Close)
	return tw, &client{t: t, srv: srv}
}

func (c *client) do(method, path, contentType string, body io.Reader, header map[string]string) *response {
	c.t.Helper()
	req, err := http.NewRequest(method, c.srv.URL+path, body)
	if err != nil {
		c.t.Fatalf("failed to create request: %s", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := c.srv.Client().Do(req)
	if err != nil {
		c.t.Fatalf("failed to send request: %s", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	res := &response{status: resp.StatusCode, raw: raw}
	_ = json.Unmarshal(raw, &res.body)
	return res
}

func (c *client) json(method, path string, v any, header map[string]string) *response {
	c.t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		c.t.Fatalf("failed to marshal: %s", err)
	}
	return c.do(method, path, "application/json", bytes.NewReader(b), header)
}

func (c *client) upload(path, contentType string, content []byte) *response {
	c.t.Helper()
	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="frontIdCard.jpg"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		c.t.Fatalf("failed to create part: %s", err)
	}
	_, _ = part.Write(content)
	_ = w.Close()
	return c.do(http.MethodPost, path, w.FormDataContentType(), &b, nil)
}

func (r *response) assertStatus(t *testing.T, expect int) {
	t.Helper()
	if r.status != expect {
		t.Fatalf("expected status %d but got %d: %s", expect, r.status, r.raw)
	}
}

func result(t *testing.T, body map[string]any, field string) map[string]any {
	t.Helper()
	r, ok := body[field].(map[string]any)
	if !ok {
		t.Fatalf("no %s: %v", field, body)
	}
	return r
}

var jpeg = []byte{0xff, 0xd8, 0xff, 0xe0}

func TestVerificationWorkflow(t *testing.T) {
	tw, c := setup(t, twin.Options{PrivateKey: "kycPrivateKey"})
	auth := map[string]string{"Authorization": "Bearer kycPrivateKey"}

	c.json(http.MethodPost, "/verifications", map[string]any{}, nil).assertStatus(t, http.StatusUnauthorized)

	res := c.json(http.MethodPost, "/verifications", map[string]any{
		"frontIdCardConfig": map[string]any{"required": true, "attempts": 2},
	}, auth)
	res.assertStatus(t, http.StatusOK)
	id, _ := res.body["id"].(string)
	if id == "" {
		t.Fatalf("no id: %s", res.raw)
	}
	base := "/verifications/" + id

	c.do(http.MethodGet, base, "", nil, nil).assertStatus(t, http.StatusOK)
	c.do(http.MethodGet, "/verifications/unknown", "", nil, nil).assertStatus(t, http.StatusNotFound)

	// the processes require the consent
	c.upload(base+"/frontIdCards", "image/jpeg", jpeg).assertStatus(t, http.StatusConflict)

	res = c.json(http.MethodPatch, base, map[string]any{"pdpaConsented": true, "welcomeConfirmed": true}, nil)
	res.assertStatus(t, http.StatusOK)
	if res.body["pdpaConsented"] != true || res.body["welcomeConfirmed"] != true {
		t.Fatalf("unexpected body: %s", res.raw)
	}

	c.json(http.MethodPatch, base+"/frontIdCards", map[string]any{"confirmed": true}, nil).assertStatus(t, http.StatusConflict)
	c.upload(base+"/frontIdCards", "image/png", jpeg).assertStatus(t, http.StatusUnsupportedMediaType)
	c.upload(base+"/unknown", "image/jpeg", jpeg).assertStatus(t, http.StatusNotFound)

	res = c.upload(base+"/frontIdCards", "image/jpeg", jpeg)
	res.assertStatus(t, http.StatusOK)
	if r := result(t, res.body, "frontIdCardResult"); r["verified"] != false || r["confirmed"] != false {
		t.Fatalf("unexpected result: %v", r)
	}
	c.upload(base+"/frontIdCards", "image/jpeg", jpeg).assertStatus(t, http.StatusOK)
	c.upload(base+"/frontIdCards", "image/jpeg", jpeg).assertStatus(t, http.StatusConflict)

	res = c.json(http.MethodPatch, base+"/frontIdCards", map[string]any{"confirmed": true}, nil)
	res.assertStatus(t, http.StatusOK)
	if r := result(t, res.body, "frontIdCardResult"); r["verified"] != true || r["confirmed"] != true {
		t.Fatalf("unexpected result: %v", r)
	}

	c.json(http.MethodPatch, base+"/dopa", map[string]any{"confirmed": true}, nil).assertStatus(t, http.StatusConflict)

	c.upload(base+"/backIdCards", "image/jpeg", jpeg).assertStatus(t, http.StatusOK)
	c.json(http.MethodPatch, base+"/backIdCards", map[string]any{"confirmed": true}, nil).assertStatus(t, http.StatusOK)

	res = c.json(http.MethodPatch, base+"/dopa", map[string]any{"confirmed": true, "informed": true}, nil)
	res.assertStatus(t, http.StatusOK)
	if r := result(t, res.body, "dopaResult"); r["verified"] != true || r["confirmed"] != true {
		t.Fatalf("unexpected result: %v", r)
	}
	if res.body["status"] != twin.StatusVerified {
		t.Fatalf("unexpected status: %v", res.body["status"])
	}

	v, ok := tw.Verification(id)
	if !ok || v.Status != twin.StatusVerified || !v.DopaResult.Informed {
		t.Fatalf("unexpected verification: %+v", v)
	}
}

func TestIssueToken(t *testing.T) {
	now := time.Now()
	var clock atomic.Int64
	clock.Store(now.UnixNano())
	_, c := setup(t, twin.Options{
		ClientID:     "clientId",
		ClientSecret: "clientSecret",
		TokenTTL:     time.Minute,
		Now:          func() time.Time { return time.Unix(0, clock.Load()) },
	})
	form := func(secret string) io.Reader {
		return strings.NewReader(url.Values{
			"grant_type":    []string{"client_credentials"},
			"client_id":     []string{"clientId"},
			"client_secret": []string{secret},
		}.Encode())
	}
	const contentType = "application/x-www-form-urlencoded"

	c.do(http.MethodPost, "/auth/realms/other/protocol/openid-connect/token", contentType, form("clientSecret"), nil).
		assertStatus(t, http.StatusNotFound)
	c.do(http.MethodPost, "/auth/realms/mac-portal/protocol/openid-connect/token", contentType, form("wrong"), nil).
		assertStatus(t, http.StatusUnauthorized)

	res := c.do(http.MethodPost, "/auth/realms/mac-portal/protocol/openid-connect/token", contentType, form("clientSecret"), nil)
	res.assertStatus(t, http.StatusOK)
	tok, _ := res.body["access_token"].(string)
	if tok == "" {
		t.Fatalf("no access_token: %s", res.raw)
	}

	cases := map[string]any{"proprietors": []any{map[string]any{"verifications": []any{map[string]any{}}}}}
	c.json(http.MethodPost, "/api/v2/case-keeper/cases", cases, nil).assertStatus(t, http.StatusUnauthorized)
	res = c.json(http.MethodPost, "/api/v2/case-keeper/cases", cases, map[string]string{"Authorization": "Bearer " + tok})
	res.assertStatus(t, http.StatusOK)
	ps, _ := res.body["proprietors"].([]any)
	if len(ps) != 1 {
		t.Fatalf("unexpected case: %s", res.raw)
	}
	vs, _ := ps[0].(map[string]any)["verifications"].([]any)
	if len(vs) != 1 {
		t.Fatalf("unexpected case: %s", res.raw)
	}
	id, _ := vs[0].(map[string]any)["id"].(string)
	c.do(http.MethodGet, "/api/v1/kyc/verifications/"+id, "", nil, nil).assertStatus(t, http.StatusOK)

	clock.Store(now.Add(2 * time.Minute).UnixNano())
	c.json(http.MethodPost, "/api/v2/case-keeper/cases", cases, map[string]string{"Authorization": "Bearer " + tok}).
		assertStatus(t, http.StatusUnauthorized)
}

func TestFaultInjection(t *testing.T) {
	tw, c := setup(t, twin.Options{})
	res := c.json(http.MethodPost, "/api/v1/kyc/verifications", map[string]any{}, nil)
	res.assertStatus(t, http.StatusOK)
	id, _ := res.body["id"].(string)

	tw.SetFault(twin.Fault{Method: http.MethodGet, Path: "/verifications/*", Status: http.StatusServiceUnavailable, Times: 1})
	c.do(http.MethodGet, "/api/v1/kyc/verifications/"+id, "", nil, nil).assertStatus(t, http.StatusServiceUnavailable)
	c.do(http.MethodGet, "/api/v1/kyc/verifications/"+id, "", nil, nil).assertStatus(t, http.StatusOK)

	c.json(http.MethodPost, "/admin/faults", twin.Fault{Path: "/verifications/*", Status: http.StatusOK, Body: `{"status":"pending"}`}, nil).
		assertStatus(t, http.StatusNoContent)
	res = c.do(http.MethodGet, "/verifications/"+id, "", nil, nil)
	res.assertStatus(t, http.StatusOK)
	if _, ok := res.body["id"]; ok {
		t.Fatalf("expected injected body but got %s", res.raw)
	}

	c.do(http.MethodDelete, "/admin/faults", "", nil, nil).assertStatus(t, http.StatusNoContent)
	c.do(http.MethodGet, "/verifications/"+id, "", nil, nil).assertStatus(t, http.StatusOK)

	res = c.do(http.MethodGet, "/admin/state", "", nil, nil)
	res.assertStatus(t, http.StatusOK)
	if vs, _ := res.body["verifications"].([]any); len(vs) != 1 {
		t.Fatalf("unexpected state: %s", res.raw)
	}
	c.do(http.MethodPost, "/admin/reset", "", nil, nil).assertStatus(t, http.StatusNoContent)
	c.do(http.MethodGet, "/verifications/"+id, "", nil, nil).assertStatus(t, http.StatusNotFound)
}

func TestLogin(t *testing.T) {
	_, c := setup(t, twin.Options{Username: "agent", Password: "secret"})
	jarClient := c.srv.Client()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	jarClient.Jar = jar

	resp, err := jarClient.Get(c.srv.URL + twin.PortalPath)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	resp.Body.Close()
	if resp.Request.URL.Path != twin.LoginPath {
		t.Fatalf("expected to be redirected to the login page but got %s", resp.Request.URL)
	}

	resp, err = jarClient.PostForm(c.srv.URL+twin.LoginPath, url.Values{
		"username": []string{"agent"},
		"password": []string{"secret"},
		"redirect": []string{twin.PortalCasesPath},
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	resp.Body.Close()
	if resp.Request.URL.Path != twin.PortalCasesPath {
		t.Fatalf("expected to be redirected to the cases page but got %s", resp.Request.URL)
	}

	// the session authorizes the case service too
	req, _ := http.NewRequest(http.MethodPost, c.srv.URL+"/cases", strings.NewReader(`{"proprietors":[{"verifications":[{}]}]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = jarClient.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %s", resp.Status)
	}
}
