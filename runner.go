// Package kycflow runs the verification scenarios against the configured targets.
package kycflow

import (
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/kycflow/kycflow/auth"
	"github.com/kycflow/kycflow/context"
	"github.com/kycflow/kycflow/errors"
	"github.com/kycflow/kycflow/fixture"
	kychttp "github.com/kycflow/kycflow/protocol/http"
	"github.com/kycflow/kycflow/reporter"
	"github.com/kycflow/kycflow/scenario"
	"github.com/kycflow/kycflow/scenario/verification"
	"github.com/kycflow/kycflow/schema"
)

// Runner represents a test runner.
type Runner struct {
	config     *schema.Config
	targets    []string
	fixtures   fs.FS
	httpClient *http.Client
	forceLogin bool

	store   *fixture.Store
	session *auth.SessionProvider
	plans   []plan
}

type plan struct {
	target   schema.Target
	scenario string
	build    func(verification.Target, verification.Deps) (*scenario.Scenario, error)
}

// WithConfig returns an option to set the configuration.
// The runner keeps a copy of cfg.
func WithConfig(cfg *schema.Config) func(*Runner) error {
	return func(r *Runner) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		r.config = cfg.Clone()
		return nil
	}
}

// WithTargets returns an option to run only the named targets.
func WithTargets(names ...string) func(*Runner) error {
	return func(r *Runner) error {
		r.targets = append(r.targets, names...)
		return nil
	}
}

// WithFixtures returns an option to read the fixture assets from fsys instead of the configured directory.
func WithFixtures(fsys fs.FS) func(*Runner) error {
	return func(r *Runner) error {
		r.fixtures = fsys
		return nil
	}
}

// WithHTTPClient returns an option to send every request with hc.
func WithHTTPClient(hc *http.Client) func(*Runner) error {
	return func(r *Runner) error {
		r.httpClient = hc
		return nil
	}
}

// WithForceLogin returns an option to sign in again even if a valid session is saved.
func WithForceLogin(force bool) func(*Runner) error {
	return func(r *Runner) error {
		r.forceLogin = force
		return nil
	}
}

// NewRunner returns a new test runner.
func NewRunner(opts ...func(*Runner) error) (*Runner, error) {
	r := &Runner{}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.config == nil {
		r.config = schema.DefaultConfig()
	}

	targets, err := r.selectTargets()
	if err != nil {
		return nil, err
	}
	selected := &schema.Config{}
	*selected = *r.config
	selected.Targets = targets
	if err := selected.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	for _, t := range targets {
		names := t.Scenarios
		if len(names) == 0 {
			names = []string{schema.DefaultScenario}
		}
		for _, name := range names {
			build, ok := verification.Builders[name]
			if !ok {
				return nil, errors.Errorf("target %s: unknown scenario %q", t.Name, name)
			}
			r.plans = append(r.plans, plan{target: t, scenario: name, build: build})
		}
		if t.Auth == schema.AuthSession && r.session == nil {
			r.session = NewSessionProvider(r.config, r.forceLogin, r.transport())
		}
	}

	if r.fixtures != nil {
		r.store = fixture.NewStore(r.fixtures)
	} else {
		r.store = fixture.NewDirStore(r.config.ResolvePath(r.config.Fixtures.Dir))
	}
	return r, nil
}

func (r *Runner) selectTargets() ([]schema.Target, error) {
	if len(r.targets) == 0 {
		return r.config.Targets, nil
	}
	targets := make([]schema.Target, 0, len(r.targets))
	seen := map[string]bool{}
	for _, name := range r.targets {
		if seen[name] {
			continue
		}
		seen[name] = true
		t, ok := r.config.Target(name)
		if !ok {
			return nil, errors.Errorf("target %q is not configured", name)
		}
		targets = append(targets, *t)
	}
	return targets, nil
}

func (r *Runner) transport() http.RoundTripper {
	if r.httpClient != nil {
		return r.httpClient.Transport
	}
	return nil
}

// Targets returns the targets to run.
func (r *Runner) Targets() []schema.Target {
	var targets []schema.Target
	seen := map[string]bool{}
	for _, p := range r.plans {
		if !seen[p.target.Name] {
			seen[p.target.Name] = true
			targets = append(targets, p.target)
		}
	}
	return targets
}

// ScenarioNames returns the names of the scenarios to run.
func (r *Runner) ScenarioNames() []string {
	names := make([]string, len(r.plans))
	for i, p := range r.plans {
		names[i] = p.target.Name + "/" + p.scenario
	}
	return names
}

// Run runs every scenario of every target.
// Scenarios run in parallel up to the limit of the reporter, each with its own State.
func (r *Runner) Run(ctx *context.Context) {
	ctx = ctx.WithVerbose(ctx.Verbose() || r.config.Output.Verbose)
	for _, p := range r.plans {
		ctx.Run(p.target.Name+"/"+p.scenario, func(ctx *context.Context) {
			ctx.Reporter().Parallel()
			s, err := r.scenario(p)
			if err != nil {
				ctx.Reporter().Fatal(err)
			}
			scenario.Execute(ctx, s)
		})
	}
}

func (r *Runner) scenario(p plan) (*scenario.Scenario, error) {
	deps, err := r.deps(&p.target)
	if err != nil {
		return nil, errors.Wrapf(err, "target %s", p.target.Name)
	}
	return p.build(verification.Target{
		Name:   p.target.Name,
		Create: p.target.Create,
		Config: p.target.Verification,
	}, deps)
}

func (r *Runner) deps(t *schema.Target) (verification.Deps, error) {
	opts := r.clientOptions()
	kyc, err := kycCoreClient(t, r.store, opts...)
	if err != nil {
		return verification.Deps{}, err
	}
	deps := verification.Deps{KYCCore: kyc}
	if t.Create == schema.CreateCase {
		deps.CaseKeeper, err = caseKeeperClient(t, opts...)
		if err != nil {
			return verification.Deps{}, err
		}
	}
	deps.Credential, err = CredentialProvider(r.config, t, r.session, r.httpClient)
	if err != nil {
		return verification.Deps{}, err
	}
	return deps, nil
}

func (r *Runner) clientOptions() []kychttp.ClientOption {
	var opts []kychttp.ClientOption
	if r.httpClient != nil {
		opts = append(opts, kychttp.WithHTTPClient(r.httpClient))
	}
	if d := r.config.Execution.Timeout.Std(); d > 0 {
		opts = append(opts, kychttp.WithTimeout(d))
	}
	return opts
}

// CreateTestReport creates the test reports configured by the output settings.
// rptr must be the root reporter passed to Run.
func (r *Runner) CreateTestReport(rptr reporter.Reporter) error {
	reportCfg := r.config.Output.Report
	if reportCfg.JSON.Filename == "" && reportCfg.JUnit.Filename == "" {
		return nil
	}
	report, err := reporter.GenerateTestReport(rptr)
	if err != nil {
		return errors.Wrap(err, "failed to generate test report")
	}
	if name := reportCfg.JSON.Filename; name != "" {
		b, err := report.MarshalIndentJSON()
		if err != nil {
			return errors.Wrap(err, "failed to marshal JSON report")
		}
		if err := writeFile(r.config.ResolvePath(name), b); err != nil {
			return err
		}
	}
	if name := reportCfg.JUnit.Filename; name != "" {
		b, err := report.MarshalJUnit()
		if err != nil {
			return errors.Wrap(err, "failed to marshal JUnit report")
		}
		if err := writeFile(r.config.ResolvePath(name), b); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create the directory of %s", path)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil { //nolint:gosec
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
