// Package verification defines the scenario which drives a verification from creation to "verified".
// The same steps serve every target; only the way the verification is created and the credential differ.
package verification

import (
	"github.com/kycflow/kycflow/auth"
	"github.com/kycflow/kycflow/errors"
	"github.com/kycflow/kycflow/internal/deepcopy"
	"github.com/kycflow/kycflow/scenario"
	"github.com/kycflow/kycflow/schema"
	"github.com/kycflow/kycflow/service/casekeeper"
	"github.com/kycflow/kycflow/service/kyccore"
)

// Scenario names.
const (
	Name            = "verification"
	UploadSmokeName = "upload-smoke"
)

// StatusVerified is the status of a verification whose every process is confirmed.
const StatusVerified = "verified"

var defaultConfig = map[string]any{
	"frontIdCardConfig": map[string]any{
		"required":             true,
		"attempts":             3,
		"threshHold":           0.8,
		"dependenciesRequired": true,
		"isEditable":           false,
	},
	"backIdCardConfig": map[string]any{
		"required":             true,
		"dependenciesRequired": false,
		"isEditable":           false,
	},
	"dopaConfig": map[string]any{
		"required":             true,
		"attempts":             3,
		"livenessCount":        1,
		"threshHold":           0.8,
		"dependenciesRequired": false,
		"isEditable":           false,
	},
}

// Config returns a new verification config payload.
// Top-level sections of overrides replace the default ones.
func Config(overrides map[string]any) (map[string]any, error) {
	cfg, err := deepCopy(defaultConfig)
	if err != nil {
		return nil, err
	}
	for k, v := range overrides {
		cfg[k] = v
	}
	return deepCopy(cfg)
}

func deepCopy(m map[string]any) (map[string]any, error) {
	v, err := deepcopy.Copy(m)
	if err != nil {
		return nil, errors.Wrap(err, "failed to copy the verification config")
	}
	return v, nil
}

// Target describes where and how a scenario creates its verification.
type Target struct {
	Name   string
	Create schema.CreateMode
	// Config overrides sections of the verification config payload.
	Config map[string]any
}

// Deps are the clients a scenario talks to.
type Deps struct {
	KYCCore *kyccore.Client
	// CaseKeeper is required to create verifications through cases.
	CaseKeeper *casekeeper.Client
	// Credential authorizes the creation. Nil means anonymous.
	Credential auth.Provider
}

// New returns the verification scenario:
// create, read without credential, consent twice, upload and confirm both ID card sides, confirm DOPA.
func New(t Target, d Deps) (*scenario.Scenario, error) {
	b, err := newBuilder(t, d)
	if err != nil {
		return nil, err
	}
	steps := b.prelude()
	steps = append(steps,
		b.getWithoutCredential(),
		b.consent("consent to PDPA and confirm welcome"),
		b.consent("consent again"),
	)
	for _, p := range []kyccore.Process{kyccore.FrontIDCards, kyccore.BackIDCards} {
		steps = append(steps, b.upload(p), b.confirm(p))
	}
	steps = append(steps, b.confirmDopa())
	return &scenario.Scenario{
		Name:  scenarioName(t.Name, Name),
		Steps: steps,
	}, nil
}

// NewUploadSmoke returns a scenario which uploads the front ID card and only logs the response.
func NewUploadSmoke(t Target, d Deps) (*scenario.Scenario, error) {
	b, err := newBuilder(t, d)
	if err != nil {
		return nil, err
	}
	steps := b.prelude()
	steps = append(steps, b.consent("consent to PDPA and confirm welcome"))
	upload := b.upload(kyccore.FrontIDCards)
	upload.Expect = nil
	steps = append(steps, upload)
	return &scenario.Scenario{
		Name:  scenarioName(t.Name, UploadSmokeName),
		Steps: steps,
	}, nil
}

// Builders maps scenario names to their constructors.
var Builders = map[string]func(Target, Deps) (*scenario.Scenario, error){
	Name:            New,
	UploadSmokeName: NewUploadSmoke,
}

func scenarioName(target, name string) string {
	if target == "" {
		return name
	}
	return target + "/" + name
}
