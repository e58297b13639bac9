package schema

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/kycflow/kycflow/errors"
	"github.com/kycflow/kycflow/internal/deepcopy"
)

// DefaultConfigFileName is the default configuration file name.
const DefaultConfigFileName = "kycflow.yaml"

// Names of the targets synthesized when the configuration has no targets.
const (
	DirectTargetName  = "kyc-core"
	GatewayTargetName = "gateway"
)

// DefaultScenario is the scenario run when a target names none.
const DefaultScenario = "verification"

// DefaultConfig returns the configuration used without a configuration file.
// It holds no credentials.
func DefaultConfig() *Config {
	return &Config{
		SchemaVersion: "config/v1",
		Targets: []Target{
			{
				Name:       DirectTargetName,
				Create:     CreateDirect,
				Auth:       AuthStatic,
				KYCCore:    "http://localhost:4000",
				CaseKeeper: "http://localhost:4001",
			},
			{
				Name:    GatewayTargetName,
				Create:  CreateCase,
				Auth:    AuthClientCredentials,
				BaseURL: "http://localhost:8080",
			},
		},
		Auth: Auth{
			Realm: "mac-portal",
		},
		Login: Login{
			StorageState: filepath.Join("playwright", ".auth", "agent.json"),
			Timeout:      Duration(30 * time.Second),
		},
		Fixtures: Fixtures{
			Dir: "assets",
		},
		Execution: Execution{
			Timeout: Duration(30 * time.Second),
		},
	}
}

// LoadOption configures LoadConfig.
type LoadOption func(*loader)

type loader struct {
	lookupEnv func(string) (string, bool)
	envFile   string
}

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(f func(string) (string, bool)) LoadOption {
	return func(l *loader) {
		l.lookupEnv = f
	}
}

// WithEnvFile sets the dotenv file read before resolving the environment.
// It defaults to ".env" in the directory of the configuration file.
func WithEnvFile(path string) LoadOption {
	return func(l *loader) {
		l.envFile = path
	}
}

// LoadConfig loads a configuration from path.
// An empty path loads the default configuration.
// Variables in the dotenv file are visible to "${VAR}" references and environment
// overrides unless the process environment sets them.
func LoadConfig(path string, opts ...LoadOption) (*Config, error) {
	l := &loader{lookupEnv: os.LookupEnv}
	for _, opt := range opts {
		opt(l)
	}

	root := "."
	if path != "" {
		root = filepath.Dir(path)
	}
	if l.envFile == "" {
		l.envFile = filepath.Join(root, ".env")
	}
	lookup, err := l.lookup()
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config")
		}
		if err := unmarshal(b, cfg, lookup); err != nil {
			return nil, errors.Wrapf(err, "failed to load %s", path)
		}
	}
	if err := mergo.Merge(cfg, DefaultConfig()); err != nil {
		return nil, errors.Wrap(err, "failed to apply defaults")
	}
	applyEnv(cfg, lookup)
	normalize(cfg)

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve the root directory")
	}
	cfg.Root = abs
	return cfg, nil
}

func (l *loader) lookup() (func(string) (string, bool), error) {
	dotenv, err := godotenv.Read(l.envFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(err, "failed to read %s", l.envFile)
		}
		dotenv = map[string]string{}
	}
	return func(key string) (string, bool) {
		if v, ok := l.lookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}, nil
}

var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces "${VAR}" references only. A bare "$" is kept as is.
func expandEnv(b []byte, lookup func(string) (string, bool)) []byte {
	return envRefPattern.ReplaceAllFunc(b, func(ref []byte) []byte {
		v, _ := lookup(string(ref[2 : len(ref)-1]))
		return []byte(v)
	})
}

func unmarshal(b []byte, cfg *Config, lookup func(string) (string, bool)) error {
	if err := yaml.UnmarshalWithOptions(expandEnv(b, lookup), cfg, yaml.Strict()); err != nil {
		return errors.New(yaml.FormatError(err, false, true))
	}
	return nil
}

// applyEnv overrides cfg with the variables the suites have always read.
// Service URLs apply to the synthesized target of the same role.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(&cfg.Auth.PrivateKey, "KYC_PRIVATE_KEY")
	set(&cfg.Auth.Realm, "REALM")
	set(&cfg.Auth.ClientID, "CLIENT_ID")
	set(&cfg.Auth.ClientSecret, "CLIENT_SECRET")
	set(&cfg.Auth.Issuer, "KYCFLOW_ISSUER")
	set(&cfg.Login.URL, "KYCFLOW_LOGIN_URL")
	set(&cfg.Login.SuccessURL, "KYCFLOW_LOGIN_SUCCESS_URL")
	set(&cfg.Login.Username, "KYCFLOW_USERNAME")
	set(&cfg.Login.Password, "KYCFLOW_PASSWORD")
	set(&cfg.Login.StorageState, "KYCFLOW_STORAGE_STATE")

	if t, ok := cfg.Target(DirectTargetName); ok {
		set(&t.KYCCore, "KYC_BASE_URL")
		set(&t.CaseKeeper, "CASE_KEEPER_BASE_URL")
	}
	if t, ok := cfg.Target(GatewayTargetName); ok {
		set(&t.BaseURL, "BASE_URL")
	}
}

func normalize(cfg *Config) {
	for i := range cfg.Targets {
		t := &cfg.Targets[i]
		if t.Create == "" {
			t.Create = CreateDirect
		}
		if t.Auth == "" {
			switch {
			case t.Create == CreateCase:
				t.Auth = AuthClientCredentials
			case cfg.Auth.PrivateKey != "":
				t.Auth = AuthStatic
			default:
				t.Auth = AuthNone
			}
		}
		if len(t.Scenarios) == 0 {
			t.Scenarios = []string{DefaultScenario}
		}
	}
}

// ResolvePath resolves path from the root directory.
func (c *Config) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) || c.Root == "" {
		return path
	}
	return filepath.Join(c.Root, path)
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	return deepcopy.MustCopy(c)
}

// Redacted returns a copy of c without secrets for display.
func (c *Config) Redacted() *Config {
	r := c.Clone()
	for _, s := range []*string{&r.Auth.ClientSecret, &r.Auth.PrivateKey, &r.Login.Password} {
		if *s != "" {
			*s = strings.Repeat("*", 8)
		}
	}
	return r
}
