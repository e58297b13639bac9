// Package schema provides the configuration of kycflow.
package schema

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/kycflow/kycflow/errors"
)

// Gateway prefixes of the services behind a single base URL.
const (
	AuthPrefix       = "/auth"
	KYCCorePrefix    = "/api/v1/kyc"
	CaseKeeperPrefix = "/api/v2/case-keeper"
)

// Config represents a configuration.
type Config struct {
	SchemaVersion string    `yaml:"schemaVersion,omitempty"`
	Targets       []Target  `yaml:"targets,omitempty"`
	Auth          Auth      `yaml:"auth,omitempty"`
	Login         Login     `yaml:"login,omitempty"`
	Fixtures      Fixtures  `yaml:"fixtures,omitempty"`
	Execution     Execution `yaml:"execution,omitempty"`
	Output        Output    `yaml:"output,omitempty"`

	// Root is the directory of the configuration file.
	// Relative paths in the configuration are resolved from it.
	Root string `yaml:"-"`
}

// CreateMode is the way a target creates verifications.
type CreateMode string

const (
	// CreateDirect creates a verification with the verification service.
	CreateDirect CreateMode = "direct"
	// CreateCase creates a case holding the verification with the case service.
	CreateCase CreateMode = "case"
)

// AuthMode is the credential attached to the authorized calls of a target.
type AuthMode string

const (
	AuthNone              AuthMode = "none"
	AuthStatic            AuthMode = "static"
	AuthClientCredentials AuthMode = "clientCredentials"
	AuthSession           AuthMode = "session"
)

// Target is a deployment of the services a scenario runs against.
type Target struct {
	Name   string     `yaml:"name"`
	Create CreateMode `yaml:"create,omitempty"`
	Auth   AuthMode   `yaml:"auth,omitempty"`

	// BaseURL is the gateway serving every service under its prefix.
	BaseURL string `yaml:"baseURL,omitempty"`
	// KYCCore and CaseKeeper override the service URLs derived from BaseURL.
	KYCCore    string `yaml:"kycCore,omitempty"`
	CaseKeeper string `yaml:"caseKeeper,omitempty"`
	Issuer     string `yaml:"issuer,omitempty"`

	// Scenarios defaults to ["verification"].
	Scenarios []string `yaml:"scenarios,omitempty"`
	// Verification overrides fields of the verification config payload.
	Verification map[string]any `yaml:"verification,omitempty"`
}

// KYCCoreURL returns the base URL of the verification service.
func (t *Target) KYCCoreURL() string {
	return serviceURL(t.KYCCore, t.BaseURL, KYCCorePrefix)
}

// CaseKeeperURL returns the base URL of the case service.
func (t *Target) CaseKeeperURL() string {
	return serviceURL(t.CaseKeeper, t.BaseURL, CaseKeeperPrefix)
}

// IssuerURL returns the base URL of the token issuer.
// The global issuer is used if t has neither an issuer nor a base URL.
func (t *Target) IssuerURL(global string) string {
	if u := serviceURL(t.Issuer, t.BaseURL, AuthPrefix); u != "" {
		return u
	}
	return strings.TrimSuffix(global, "/")
}

func serviceURL(explicit, base, prefix string) string {
	if explicit != "" {
		return strings.TrimSuffix(explicit, "/")
	}
	if base != "" {
		return strings.TrimSuffix(base, "/") + prefix
	}
	return ""
}

// Auth represents the credentials of the token issuer and the verification service.
type Auth struct {
	Issuer       string `yaml:"issuer,omitempty"`
	Realm        string `yaml:"realm,omitempty"`
	ClientID     string `yaml:"clientId,omitempty"`
	ClientSecret string `yaml:"clientSecret,omitempty"`
	// PrivateKey is the static key of the verification service.
	PrivateKey string `yaml:"privateKey,omitempty"`
}

// Login represents the interactive login of the operator portal.
type Login struct {
	URL          string   `yaml:"url,omitempty"`
	SuccessURL   string   `yaml:"successURL,omitempty"`
	Username     string   `yaml:"username,omitempty"`
	Password     string   `yaml:"password,omitempty"`
	StorageState string   `yaml:"storageState,omitempty"`
	Timeout      Duration `yaml:"timeout,omitempty"`
}

// Fixtures represents the location of the fixture assets.
type Fixtures struct {
	Dir string `yaml:"dir,omitempty"`
}

// Execution represents the execution settings.
type Execution struct {
	Parallel int `yaml:"parallel,omitempty"`
	// Timeout bounds every HTTP call.
	Timeout Duration `yaml:"timeout,omitempty"`
}

// Output represents the output settings.
type Output struct {
	Verbose bool         `yaml:"verbose,omitempty"`
	Colored *bool        `yaml:"colored,omitempty"`
	Summary bool         `yaml:"summary,omitempty"`
	Report  OutputReport `yaml:"report,omitempty"`
}

// OutputReport represents the report file settings.
type OutputReport struct {
	JSON  ReportConfig `yaml:"json,omitempty"`
	JUnit ReportConfig `yaml:"junit,omitempty"`
}

// ReportConfig represents a report file.
type ReportConfig struct {
	Filename string `yaml:"filename,omitempty"`
}

// Target returns the target named name.
func (c *Config) Target(name string) (*Target, bool) {
	for i := range c.Targets {
		if c.Targets[i].Name == name {
			return &c.Targets[i], true
		}
	}
	return nil, false
}

// Validate checks that every target can be run.
func (c *Config) Validate() error {
	var errs []error
	names := map[string]int{}
	for i := range c.Targets {
		t := &c.Targets[i]
		path := fmt.Sprintf("targets[%d]", i)
		if t.Name == "" {
			errs = append(errs, errors.ErrorPathf(path+".name", "target name is required"))
		} else if j, ok := names[t.Name]; ok {
			errs = append(errs, errors.ErrorPathf(path+".name", "%q is already used by targets[%d]", t.Name, j))
		} else {
			names[t.Name] = i
		}
		errs = append(errs, c.validateTarget(path, t)...)
	}
	return errors.Errors(errs...)
}

func (c *Config) validateTarget(path string, t *Target) []error {
	var errs []error
	switch t.Create {
	case CreateDirect:
	case CreateCase:
		if err := validateURL(t.CaseKeeperURL()); err != nil {
			errs = append(errs, errors.WithPath(errors.Wrap(err, "invalid case service URL"), path+".caseKeeper"))
		}
	default:
		errs = append(errs, errors.ErrorPathf(path+".create", "unknown create mode %q", t.Create))
	}
	if err := validateURL(t.KYCCoreURL()); err != nil {
		errs = append(errs, errors.WithPath(errors.Wrap(err, "invalid verification service URL"), path+".kycCore"))
	}
	switch t.Auth {
	case AuthNone:
	case AuthStatic:
		if c.Auth.PrivateKey == "" {
			errs = append(errs, errors.ErrorPathf(path+".auth", "static auth requires auth.privateKey"))
		}
	case AuthClientCredentials:
		if c.Auth.ClientID == "" || c.Auth.ClientSecret == "" {
			errs = append(errs, errors.ErrorPathf(path+".auth", "clientCredentials auth requires auth.clientId and auth.clientSecret"))
		}
		if err := validateURL(t.IssuerURL(c.Auth.Issuer)); err != nil {
			errs = append(errs, errors.WithPath(errors.Wrap(err, "invalid issuer URL"), path+".issuer"))
		}
	case AuthSession:
		if c.Login.URL == "" || c.Login.SuccessURL == "" {
			errs = append(errs, errors.ErrorPathf(path+".auth", "session auth requires login.url and login.successURL"))
		}
		if c.Login.Username == "" {
			errs = append(errs, errors.ErrorPathf(path+".auth", "session auth requires login.username"))
		}
	default:
		errs = append(errs, errors.ErrorPathf(path+".auth", "unknown auth mode %q", t.Auth))
	}
	return errs
}

func validateURL(s string) error {
	if s == "" {
		return errors.New("URL is not set")
	}
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return errors.Errorf("%q is not an absolute URL", s)
	}
	return nil
}

// Duration is a time.Duration written like "30s" in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.BytesUnmarshaler interface.
func (d *Duration) UnmarshalYAML(b []byte) error {
	var s string
	if err := yaml.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", s)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.InterfaceMarshaler interface.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
