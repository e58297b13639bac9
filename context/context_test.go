package context_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kycflow/kycflow/color"
	"github.com/kycflow/kycflow/context"
	"github.com/kycflow/kycflow/errors"
)

func TestContext(t *testing.T) {
	t.Run("request and response", func(t *testing.T) {
		ctx := context.FromT(t)
		if ctx.Request() != nil || ctx.Response() != nil {
			t.Fatal("expected no request and response")
		}
		req, resp := "req", "resp"
		got := ctx.WithRequest(req).WithResponse(resp)
		if got.Request() != req {
			t.Errorf("expected %q but got %v", req, got.Request())
		}
		if got.Response() != resp {
			t.Errorf("expected %q but got %v", resp, got.Response())
		}
		if ctx.Request() != nil {
			t.Error("original context must not be modified")
		}
	})
	t.Run("color config", func(t *testing.T) {
		cc := color.New()
		cc.SetEnabled(false)
		ctx := context.FromT(t).WithColorConfig(cc)
		if ctx.ColorConfig() != cc {
			t.Fatal("failed to get color config")
		}
	})
	t.Run("verbose", func(t *testing.T) {
		ctx := context.FromT(t)
		if ctx.Verbose() {
			t.Fatal("verbose must be disabled by default")
		}
		if !ctx.WithVerbose(true).Verbose() {
			t.Fatal("failed to enable verbose")
		}
	})
}

func TestVars(t *testing.T) {
	st := context.NewState()
	ctx := context.FromT(t).
		WithVars(map[string]any{"process": "frontIdCards", "attempts": 3}).
		WithVars(map[string]any{"process": "dopa"}).
		WithState(st)

	if _, err := ctx.ExecuteString("/verifications/{{verificationId}}"); err == nil {
		t.Fatal("expected error but no error")
	}
	if err := st.SetVerificationID("6a4b"); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	tests := map[string]struct {
		in     string
		expect string
	}{
		"state":       {in: "/verifications/{{verificationId}}", expect: "/verifications/6a4b"},
		"shadowed":    {in: "/verifications/{{verificationId}}/{{process}}", expect: "/verifications/6a4b/dopa"},
		"not string":  {in: "{{attempts}}", expect: "3"},
		"no template": {in: "/verifications", expect: "/verifications"},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ctx.ExecuteString(test.in)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != test.expect {
				t.Errorf("expected %q but got %q", test.expect, got)
			}
		})
	}

	v, err := ctx.ExecuteTemplate(map[string]any{"id": "{{verificationId}}"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if diff := cmp.Diff(map[string]any{"id": "6a4b"}, v); diff != "" {
		t.Errorf("differs (-want +got):\n%s", diff)
	}
}

func TestState(t *testing.T) {
	st := context.NewState()
	if st.VerificationID() != "" {
		t.Fatal("verification id must be empty initially")
	}
	if err := st.SetVerificationID(""); err == nil {
		t.Fatal("expected error but no error")
	}
	if err := st.Set(context.VerificationIDKey, "6a4b"); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := st.SetVerificationID("7c5d"); err == nil {
		t.Fatal("verification id must be assigned exactly once")
	}
	if got := st.VerificationID(); got != "6a4b" {
		t.Errorf("expected 6a4b but got %s", got)
	}
	if err := st.Set(context.VerificationIDKey, "8e6f"); errors.KindOf(err) != errors.KindAssertion {
		t.Fatalf("expected assertion failure but got %v", err)
	}

	st.SetToken("token")
	if got := st.Token(); got != "token" {
		t.Errorf("expected token but got %s", got)
	}
	if err := st.Set("caseId", "c-1"); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if v, ok := st.Get("caseId"); !ok || v != "c-1" {
		t.Errorf("unexpected value: %v", v)
	}
	if diff := cmp.Diff(map[string]any{"caseId": "c-1", "verificationId": "6a4b"}, st.Snapshot()); diff != "" {
		t.Errorf("differs (-want +got):\n%s", diff)
	}
}

func TestState_SetVerificationID(t *testing.T) {
	tests := map[string]struct {
		v      any
		expect string
		err    bool
	}{
		"string":      {v: "6a4b", expect: "6a4b"},
		"json number": {v: json.Number("12345"), expect: "12345"},
		"int":         {v: 42, expect: "42"},
		"float":       {v: float64(12345), expect: "12345"},
		"empty":       {v: "", err: true},
		"null":        {v: nil, err: true},
		"object":      {v: map[string]any{"id": "6a4b"}, err: true},
		"array":       {v: []any{"6a4b"}, err: true},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			st := context.NewState()
			err := st.Set(context.VerificationIDKey, test.v)
			if test.err {
				if got := errors.KindOf(err); got != errors.KindAssertion {
					t.Fatalf("expected assertion failure but got %v: %v", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got := st.VerificationID(); got != test.expect {
				t.Errorf("expected %q but got %q", test.expect, got)
			}
		})
	}
}
