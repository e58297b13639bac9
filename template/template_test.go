package template

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var data = DataFunc(func(name string) (string, bool) {
	switch name {
	case "verificationId":
		return "6a4b1f", true
	case "empty":
		return "", true
	}
	return "", false
})

func TestExecuteString(t *testing.T) {
	tests := map[string]struct {
		in     string
		expect string
		err    string
	}{
		"no placeholder": {in: "/verifications", expect: "/verifications"},
		"placeholder":    {in: "/verifications/{{verificationId}}/dopa", expect: "/verifications/6a4b1f/dopa"},
		"spaces":         {in: "/verifications/{{ verificationId }}", expect: "/verifications/6a4b1f"},
		"unknown":        {in: "/verifications/{{caseId}}", err: "caseId is not set"},
		"empty":          {in: "/verifications/{{empty}}", err: "empty is not set"},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ExecuteString(test.in, data)
			if test.err != "" {
				if err == nil {
					t.Fatal("expected error but no error")
				}
				if !strings.Contains(err.Error(), test.err) {
					t.Fatalf("%q does not contain %q", err.Error(), test.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != test.expect {
				t.Fatalf("expected %q but got %q", test.expect, got)
			}
		})
	}
}

func TestExecute(t *testing.T) {
	in := map[string]any{
		"ref":       "{{verificationId}}",
		"confirmed": true,
		"items":     []any{"{{verificationId}}", 1},
	}
	got, err := Execute(in, data)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	expect := map[string]any{
		"ref":       "6a4b1f",
		"confirmed": true,
		"items":     []any{"6a4b1f", 1},
	}
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Errorf("differs (-want +got):\n%s", diff)
	}
	if in["ref"] != "{{verificationId}}" {
		t.Errorf("input was modified: %v", in)
	}

	if _, err := Execute(map[string]any{"a": []any{"{{nope}}"}}, data); err == nil {
		t.Fatal("expected error but no error")
	}
}
