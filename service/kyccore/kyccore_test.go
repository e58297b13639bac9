package kyccore_test

import (
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/kycflow/kycflow/auth"
	"github.com/kycflow/kycflow/errors"
	"github.com/kycflow/kycflow/fixture"
	"github.com/kycflow/kycflow/internal/twin"
	"github.com/kycflow/kycflow/service/kyccore"
)

func setup(t *testing.T) *kyccore.Client {
	t.Helper()
	srv := httptest.NewServer(twin.New(twin.Options{PrivateKey: "kycPrivateKey"}).Handler())
	t.Cleanup(srv.Close)
	store := fixture.NewStore(fstest.MapFS{
		"frontIdCard.jpg": {Data: []byte{0xff, 0xd8, 0xff, 0xd9}},
		"backIdCard.jpg":  {Data: []byte{0xff, 0xd8, 0xff, 0xd9}},
	})
	c, err := kyccore.New(srv.URL+twin.KYCPrefix, store)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	return c
}

func field(t *testing.T, body any, keys ...string) any {
	t.Helper()
	v := body
	for _, k := range keys {
		m, ok := v.(map[string]any)
		if !ok {
			t.Fatalf("%v has no %s", v, k)
		}
		v = m[k]
	}
	return v
}

func TestClient(t *testing.T) {
	ctx := t.Context()
	c := setup(t)

	res, err := c.Create(ctx, map[string]any{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if res.StatusCode != 401 {
		t.Fatalf("expected 401 without credential but got %s", res.Status)
	}

	tok, err := (&auth.StaticToken{Token: "kycPrivateKey"}).Acquire(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	res, err = c.Create(ctx, map[string]any{"dopaConfig": map[string]any{"required": true}}, tok)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	id, _ := field(t, res.Body, "id").(string)
	if res.StatusCode != 200 || id == "" {
		t.Fatalf("unexpected response: %s %s", res.Status, res.Raw)
	}

	res, err = c.Get(ctx, id, nil)
	if err != nil || res.StatusCode != 200 {
		t.Fatalf("unexpected response: %v %v", res, err)
	}

	if _, err := c.PatchRoot(ctx, id, map[string]any{"pdpaConsented": true, "welcomeConfirmed": true}); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	for _, p := range []kyccore.Process{kyccore.FrontIDCards, kyccore.BackIDCards} {
		res, err := c.UploadDocument(ctx, id, p, "")
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if got := field(t, res.Body, p.ResultField(), "confirmed"); got != false {
			t.Errorf("expected unconfirmed %s but got %v", p, got)
		}
		res, err = c.PatchProcess(ctx, id, map[string]any{"confirmed": true}, p)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if got := field(t, res.Body, p.ResultField(), "verified"); got != true {
			t.Errorf("expected verified %s but got %v", p, got)
		}
	}
	res, err = c.PatchProcess(ctx, id, map[string]any{"confirmed": true, "informed": true}, kyccore.Dopa)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got := field(t, res.Body, "status"); got != "verified" {
		t.Errorf("expected verified but got %v", got)
	}
}

func TestClientErrors(t *testing.T) {
	ctx := t.Context()
	c := setup(t)

	if _, err := c.UploadDocument(ctx, "6a4b", kyccore.FrontIDCards, "missing.jpg"); errors.KindOf(err) != errors.KindTransport {
		t.Errorf("expected transport error but got %v", err)
	}
	if _, err := c.PatchProcess(ctx, "6a4b", nil, kyccore.Process("selfie")); err == nil {
		t.Error("expected error but no error")
	}

	nofixture, err := kyccore.New("http://127.0.0.1:0", nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, err := nofixture.UploadDocument(ctx, "6a4b", kyccore.FrontIDCards, ""); errors.KindOf(err) != errors.KindTransport {
		t.Errorf("expected transport error but got %v", err)
	}
}

func TestProcess(t *testing.T) {
	tests := map[kyccore.Process]struct {
		field string
		asset string
		path  string
	}{
		kyccore.FrontIDCards: {field: "frontIdCardResult", asset: "frontIdCard.jpg", path: "/verifications/{{verificationId}}/frontIdCards"},
		kyccore.BackIDCards:  {field: "backIdCardResult", asset: "backIdCard.jpg", path: "/verifications/{{verificationId}}/backIdCards"},
		kyccore.Dopa:         {field: "dopaResult", asset: "dopa.jpg", path: "/verifications/{{verificationId}}/dopa"},
	}
	for p, test := range tests {
		t.Run(string(p), func(t *testing.T) {
			if !p.Valid() {
				t.Error("expected valid process")
			}
			if got := p.ResultField(); got != test.field {
				t.Errorf("expected %s but got %s", test.field, got)
			}
			if got := p.Asset(); got != test.asset {
				t.Errorf("expected %s but got %s", test.asset, got)
			}
			if got := kyccore.ProcessPath("{{verificationId}}", p); got != test.path {
				t.Errorf("expected %s but got %s", test.path, got)
			}
		})
	}
}

func TestUploadDocumentRequest(t *testing.T) {
	store := fixture.NewStore(fstest.MapFS{
		"frontIdCard.jpg":   {Data: []byte{0xff, 0xd8, 0xff, 0xd9}},
		"frontIdCard.png":   {Data: []byte{0x89, 'P', 'N', 'G'}},
		"scans/frontIdCard": {Data: []byte{0xff, 0xd8, 0xff, 0xd9}},
	})
	c, err := kyccore.New("http://127.0.0.1:0", store)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	tests := map[string]struct {
		asset       string
		filename    string
		contentType string
	}{
		"default asset": {filename: "frontIdCard.jpg", contentType: "image/jpeg"},
		"png":           {asset: "frontIdCard.png", filename: "frontIdCard.png", contentType: "image/png"},
		"no extension":  {asset: "scans/frontIdCard", filename: "frontIdCard", contentType: fixture.DefaultContentType},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			req, err := c.UploadDocumentRequest("6a4b", kyccore.FrontIDCards, test.asset)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if len(req.Files) != 1 {
				t.Fatalf("expected a file part but got %d", len(req.Files))
			}
			f := req.Files[0]
			if f.Filename != test.filename {
				t.Errorf("expected %s but got %s", test.filename, f.Filename)
			}
			if f.ContentType != test.contentType {
				t.Errorf("expected %s but got %s", test.contentType, f.ContentType)
			}
		})
	}
}
