package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func lookupMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoadConfig(t *testing.T) {
	f := false
	tests := map[string]struct {
		path   string
		env    map[string]string
		expect func() *Config
	}{
		"default": {
			expect: func() *Config {
				cfg := DefaultConfig()
				cfg.Targets[0].Scenarios = []string{DefaultScenario}
				cfg.Targets[1].Scenarios = []string{DefaultScenario}
				return cfg
			},
		},
		"default with environment overrides": {
			env: map[string]string{
				"KYC_BASE_URL":      "https://kyc.example.com",
				"KYC_PRIVATE_KEY":   "secret",
				"BASE_URL":          "https://gateway.example.com",
				"REALM":             "staging",
				"CLIENT_ID":         "id",
				"CLIENT_SECRET":     "secret",
				"KYCFLOW_USERNAME":  "operator",
				"KYCFLOW_LOGIN_URL": "",
			},
			expect: func() *Config {
				cfg := DefaultConfig()
				cfg.Targets[0].KYCCore = "https://kyc.example.com"
				cfg.Targets[0].Scenarios = []string{DefaultScenario}
				cfg.Targets[1].BaseURL = "https://gateway.example.com"
				cfg.Targets[1].Scenarios = []string{DefaultScenario}
				cfg.Auth = Auth{
					Realm:        "staging",
					ClientID:     "id",
					ClientSecret: "secret",
					PrivateKey:   "secret",
				}
				cfg.Login.Username = "operator"
				return cfg
			},
		},
		"file": {
			path: "testdata/kycflow.yaml",
			env: map[string]string{
				"STAGING_URL":   "https://staging.example.com",
				"REALM":         "staging",
				"CLIENT_SECRET": "secret",
			},
			expect: func() *Config {
				return &Config{
					SchemaVersion: "config/v1",
					Targets: []Target{
						{
							Name:      "staging",
							Create:    CreateCase,
							Auth:      AuthClientCredentials,
							BaseURL:   "https://staging.example.com",
							Scenarios: []string{DefaultScenario},
						},
						{
							Name:       "portal",
							Create:     CreateCase,
							Auth:       AuthSession,
							KYCCore:    "https://kyc.example.com/",
							CaseKeeper: "https://cases.example.com",
							Scenarios:  []string{"verification", "upload-smoke"},
							Verification: map[string]any{
								"dopaConfig": map[string]any{"isEditable": true},
							},
						},
					},
					Auth: Auth{
						Realm:        "staging",
						ClientID:     "kycflow",
						ClientSecret: "secret",
					},
					Login: Login{
						URL:          "https://portal.example.com/apps/case-keeper",
						SuccessURL:   "https://portal.example.com/apps/case-keeper/cases",
						Username:     "operator",
						StorageState: filepath.Join("playwright", ".auth", "agent.json"),
						Timeout:      Duration(time.Minute),
					},
					Fixtures: Fixtures{Dir: "assets"},
					Execution: Execution{
						Parallel: 2,
						Timeout:  Duration(30 * time.Second),
					},
					Output: Output{
						Colored: &f,
						Summary: true,
						Report: OutputReport{
							JUnit: ReportConfig{Filename: "report.xml"},
						},
					},
				}
			},
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := LoadConfig(test.path,
				WithLookupEnv(lookupMap(test.env)),
				WithEnvFile(filepath.Join(t.TempDir(), ".env")),
			)
			if err != nil {
				t.Fatalf("failed to load config: %s", err)
			}
			if cfg.Root == "" {
				t.Error("root is empty")
			}
			if diff := cmp.Diff(test.expect(), cfg, cmpopts.IgnoreFields(Config{}, "Root")); diff != "" {
				t.Errorf("config differs (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("KYC_PRIVATE_KEY=from-dotenv\nREALM=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig("", WithEnvFile(filepath.Join(dir, ".env")), WithLookupEnv(lookupMap(map[string]string{
		"REALM": "from-env",
	})))
	if err != nil {
		t.Fatalf("failed to load config: %s", err)
	}
	if got, expect := cfg.Auth.PrivateKey, "from-dotenv"; got != expect {
		t.Errorf("expected %q but got %q", expect, got)
	}
	if got, expect := cfg.Auth.Realm, "from-env"; got != expect {
		t.Errorf("expected %q but got %q", expect, got)
	}
}

func TestLoadConfig_Expand(t *testing.T) {
	tests := map[string]struct {
		value  string
		env    map[string]string
		expect string
	}{
		"reference": {
			value:  "${SECRET}",
			env:    map[string]string{"SECRET": "s3cr3t"},
			expect: "s3cr3t",
		},
		"undefined reference": {
			value:  "${SECRET}",
			expect: "",
		},
		"dollar signs in the value": {
			value:  "pa$$word$HOME",
			env:    map[string]string{"HOME": "/root", "word": "x"},
			expect: "pa$$word$HOME",
		},
		"reference next to dollar signs": {
			value:  "$${SECRET}$",
			env:    map[string]string{"SECRET": "s3cr3t"},
			expect: "$s3cr3t$",
		},
		"not a variable name": {
			value:  "${1}${}",
			env:    map[string]string{"1": "x"},
			expect: "${1}${}",
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, DefaultConfigFileName)
			content := "schemaVersion: config/v1\nauth:\n  clientSecret: '" + test.value + "'\n"
			if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
				t.Fatal(err)
			}
			cfg, err := LoadConfig(path,
				WithLookupEnv(lookupMap(test.env)),
				WithEnvFile(filepath.Join(dir, ".env")),
			)
			if err != nil {
				t.Fatalf("failed to load config: %s", err)
			}
			if diff := cmp.Diff(test.expect, cfg.Auth.ClientSecret); diff != "" {
				t.Errorf("differs (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadConfig_Error(t *testing.T) {
	tests := map[string]struct {
		path   string
		expect string
	}{
		"not found": {
			path:   "testdata/not-found.yaml",
			expect: "failed to read config",
		},
		"unknown field": {
			path:   "testdata/unknown-field.yaml",
			expect: `unknown field "baseUrl"`,
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(test.path, WithLookupEnv(lookupMap(nil)))
			if err == nil {
				t.Fatal("expected error but no error")
			}
			if !strings.Contains(err.Error(), test.expect) {
				t.Errorf("%q does not contain %q", err.Error(), test.expect)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]struct {
		cfg    *Config
		expect []string
	}{
		"valid": {
			cfg: &Config{
				Targets: []Target{
					{Name: "direct", Create: CreateDirect, Auth: AuthStatic, KYCCore: "http://localhost:4000"},
					{Name: "gateway", Create: CreateCase, Auth: AuthClientCredentials, BaseURL: "http://localhost:8080"},
				},
				Auth: Auth{ClientID: "id", ClientSecret: "secret", PrivateKey: "key"},
			},
		},
		"invalid": {
			cfg: &Config{
				Targets: []Target{
					{Name: "a", Create: "browser", Auth: AuthNone, KYCCore: "http://localhost:4000"},
					{Name: "a", Create: CreateCase, Auth: AuthClientCredentials, KYCCore: "localhost"},
					{Create: CreateDirect, Auth: AuthSession, KYCCore: "http://localhost:4000"},
					{Name: "b", Create: CreateDirect, Auth: "cookie", KYCCore: "http://localhost:4000"},
					{Name: "c", Create: CreateDirect, Auth: AuthStatic, KYCCore: "http://localhost:4000"},
				},
			},
			expect: []string{
				`.targets[0].create: unknown create mode "browser"`,
				`.targets[1].name: "a" is already used by targets[0]`,
				`.targets[1].caseKeeper: invalid case service URL: URL is not set`,
				`.targets[1].kycCore: invalid verification service URL: "localhost" is not an absolute URL`,
				`.targets[1].auth: clientCredentials auth requires auth.clientId and auth.clientSecret`,
				`.targets[1].issuer: invalid issuer URL: URL is not set`,
				`.targets[2].name: target name is required`,
				`.targets[2].auth: session auth requires login.url and login.successURL`,
				`.targets[2].auth: session auth requires login.username`,
				`.targets[3].auth: unknown auth mode "cookie"`,
				`.targets[4].auth: static auth requires auth.privateKey`,
			},
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.cfg.Validate()
			if len(test.expect) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %s", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error but no error")
			}
			for _, s := range test.expect {
				if !strings.Contains(err.Error(), s) {
					t.Errorf("%q does not contain %q", err.Error(), s)
				}
			}
		})
	}
}

func TestTarget_URLs(t *testing.T) {
	tests := map[string]struct {
		target     Target
		kycCore    string
		caseKeeper string
		issuer     string
	}{
		"gateway": {
			target:     Target{BaseURL: "https://gateway.example.com/"},
			kycCore:    "https://gateway.example.com/api/v1/kyc",
			caseKeeper: "https://gateway.example.com/api/v2/case-keeper",
			issuer:     "https://gateway.example.com/auth",
		},
		"explicit": {
			target:     Target{BaseURL: "https://gateway.example.com", KYCCore: "https://kyc.example.com/", Issuer: "https://sso.example.com"},
			kycCore:    "https://kyc.example.com",
			caseKeeper: "https://gateway.example.com/api/v2/case-keeper",
			issuer:     "https://sso.example.com",
		},
		"global issuer": {
			target:  Target{KYCCore: "https://kyc.example.com"},
			kycCore: "https://kyc.example.com",
			issuer:  "https://global.example.com/auth",
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if got := test.target.KYCCoreURL(); got != test.kycCore {
				t.Errorf("expected %q but got %q", test.kycCore, got)
			}
			if got := test.target.CaseKeeperURL(); got != test.caseKeeper {
				t.Errorf("expected %q but got %q", test.caseKeeper, got)
			}
			if got := test.target.IssuerURL("https://global.example.com/auth/"); got != test.issuer {
				t.Errorf("expected %q but got %q", test.issuer, got)
			}
		})
	}
}

func TestConfig_Redacted(t *testing.T) {
	cfg := &Config{Auth: Auth{ClientID: "id", ClientSecret: "secret", PrivateKey: "key"}, Login: Login{Password: "pass"}}
	r := cfg.Redacted()
	if r.Auth.ClientSecret == "secret" || r.Auth.PrivateKey == "key" || r.Login.Password == "pass" {
		t.Errorf("secrets are not redacted: %+v", r)
	}
	if r.Auth.ClientID != "id" {
		t.Errorf("client id is redacted: %q", r.Auth.ClientID)
	}
	if cfg.Auth.ClientSecret != "secret" {
		t.Error("original config is modified")
	}
}
