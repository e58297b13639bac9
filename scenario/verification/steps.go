package verification

import (
	"time"

	"github.com/kycflow/kycflow/assert"
	"github.com/kycflow/kycflow/auth"
	"github.com/kycflow/kycflow/context"
	"github.com/kycflow/kycflow/errors"
	"github.com/kycflow/kycflow/protocol"
	kychttp "github.com/kycflow/kycflow/protocol/http"
	"github.com/kycflow/kycflow/scenario"
	"github.com/kycflow/kycflow/schema"
	"github.com/kycflow/kycflow/service/casekeeper"
	"github.com/kycflow/kycflow/service/kyccore"
)

const (
	credentialKey = "credential"
	idTemplate    = "{{" + context.VerificationIDKey + "}}"
)

type builder struct {
	target Target
	deps   Deps
	config map[string]any
}

func newBuilder(t Target, d Deps) (*builder, error) {
	if d.KYCCore == nil {
		return nil, errors.New("verification service client is required")
	}
	switch t.Create {
	case "":
		t.Create = schema.CreateDirect
	case schema.CreateDirect:
	case schema.CreateCase:
		if d.CaseKeeper == nil {
			return nil, errors.New("case service client is required to create verifications through cases")
		}
	default:
		return nil, errors.Errorf("unknown create mode %q", t.Create)
	}
	cfg, err := Config(t.Config)
	if err != nil {
		return nil, err
	}
	return &builder{target: t, deps: d, config: cfg}, nil
}

// prelude returns the steps which acquire the credential and create the verification.
func (b *builder) prelude() []*scenario.Step {
	var steps []*scenario.Step
	if b.deps.Credential != nil {
		steps = append(steps, b.acquireCredential())
	}
	if b.target.Create == schema.CreateCase {
		return append(steps, b.createCase())
	}
	return append(steps, b.create())
}

func (b *builder) acquireCredential() *scenario.Step {
	provider := b.deps.Credential
	return &scenario.Step{
		Title: "acquire credential",
		Request: protocol.InvokerFunc(func(ctx *context.Context) (*context.Context, any, error) {
			cred, err := provider.Credential(ctx.RequestContext())
			if err != nil {
				return ctx, nil, err
			}
			if cred == nil {
				return ctx, nil, errors.Authf("no credential acquired")
			}
			st := ctx.State()
			if st == nil {
				return ctx, nil, errors.New("no state to hold the credential")
			}
			if err := st.Set(credentialKey, cred); err != nil {
				return ctx, nil, err
			}
			summary := map[string]any{}
			switch c := cred.(type) {
			case *auth.BearerToken:
				st.SetToken(c.Value)
				summary["type"] = "bearer"
				if !c.ExpiresAt.IsZero() {
					summary["expiresAt"] = c.ExpiresAt.Format(time.RFC3339)
				}
			case *auth.StorageState:
				summary["type"] = "session"
				summary["cookies"] = len(c.Cookies)
			default:
				summary["type"] = "custom"
			}
			return ctx, summary, nil
		}),
		Expect: protocol.AssertionBuilderFunc(func(*context.Context) (assert.Assertion, error) {
			return assert.Build(map[string]any{"type": assert.NotZero()}), nil
		}),
	}
}

func credentialOf(ctx *context.Context) kychttp.Credential {
	st := ctx.State()
	if st == nil {
		return nil
	}
	v, _ := st.Get(credentialKey)
	cred, _ := v.(kychttp.Credential)
	return cred
}

func (b *builder) payload() (map[string]any, error) {
	return deepCopy(b.config)
}

func (b *builder) create() *scenario.Step {
	c := b.deps.KYCCore
	return &scenario.Step{
		Title: "create verification",
		Request: c.HTTP().Invoker(func(ctx *context.Context) (*kychttp.Request, error) {
			payload, err := b.payload()
			if err != nil {
				return nil, err
			}
			return c.CreateRequest(payload, credentialOf(ctx)), nil
		}),
		Expect: &kychttp.Expect{
			Code: "200",
			Body: map[string]any{
				"id": assert.Defined(),
			},
		},
		Bind: map[string]string{
			context.VerificationIDKey: ".body.id",
		},
	}
}

func (b *builder) createCase() *scenario.Step {
	c := b.deps.CaseKeeper
	return &scenario.Step{
		Title: "create case",
		Request: c.HTTP().Invoker(func(ctx *context.Context) (*kychttp.Request, error) {
			payload, err := b.payload()
			if err != nil {
				return nil, err
			}
			return c.CreateCaseRequest(casekeeper.CasePayload(payload), credentialOf(ctx)), nil
		}),
		Expect: &kychttp.Expect{
			Code: "200",
			Body: map[string]any{
				"proprietors": assert.And(
					assert.Length(1),
					assert.Build([]any{
						map[string]any{
							"verifications": assert.And(
								assert.Length(1),
								assert.Build([]any{
									map[string]any{"id": assert.Defined()},
								}),
							),
						},
					}),
				),
			},
		},
		Bind: map[string]string{
			context.VerificationIDKey: ".body" + casekeeper.VerificationIDQuery,
		},
	}
}

func (b *builder) getWithoutCredential() *scenario.Step {
	c := b.deps.KYCCore
	return &scenario.Step{
		Title: "get verification without credential",
		Request: c.HTTP().Invoker(func(*context.Context) (*kychttp.Request, error) {
			return c.GetRequest(idTemplate, nil), nil
		}),
		Expect: &kychttp.Expect{Code: "200"},
	}
}

func (b *builder) consent(title string) *scenario.Step {
	c := b.deps.KYCCore
	return &scenario.Step{
		Title: title,
		Request: c.HTTP().Invoker(func(*context.Context) (*kychttp.Request, error) {
			return c.PatchRootRequest(idTemplate, map[string]any{
				"pdpaConsented":    true,
				"welcomeConfirmed": true,
			}), nil
		}),
		Expect: &kychttp.Expect{
			Code: "200",
			Body: map[string]any{
				"pdpaConsented":    assert.Truthy(),
				"welcomeConfirmed": assert.Truthy(),
			},
		},
	}
}

// upload sends the fixture of p. A fresh upload is neither verified nor confirmed.
func (b *builder) upload(p kyccore.Process) *scenario.Step {
	c := b.deps.KYCCore
	return &scenario.Step{
		Title: "upload " + string(p),
		Request: c.HTTP().Invoker(func(*context.Context) (*kychttp.Request, error) {
			return c.UploadDocumentRequest(idTemplate, p, "")
		}),
		Expect: &kychttp.Expect{
			Code: "200",
			Body: result(p, false, false),
		},
	}
}

// confirm confirms p. Confirmation flips both flags.
func (b *builder) confirm(p kyccore.Process) *scenario.Step {
	c := b.deps.KYCCore
	return &scenario.Step{
		Title: "confirm " + string(p),
		Request: c.HTTP().Invoker(func(*context.Context) (*kychttp.Request, error) {
			return c.PatchProcessRequest(idTemplate, map[string]any{"confirmed": true}, p)
		}),
		Expect: &kychttp.Expect{
			Code: "200",
			Body: result(p, true, true),
		},
	}
}

func (b *builder) confirmDopa() *scenario.Step {
	step := b.confirm(kyccore.Dopa)
	c := b.deps.KYCCore
	step.Request = c.HTTP().Invoker(func(*context.Context) (*kychttp.Request, error) {
		return c.PatchProcessRequest(idTemplate, map[string]any{
			"confirmed": true,
			"informed":  true,
		}, kyccore.Dopa)
	})
	body := result(kyccore.Dopa, true, true)
	body["status"] = StatusVerified
	step.Expect = &kychttp.Expect{Code: "200", Body: body}
	return step
}

// result expects the result object of p to be present with flags of the given truthiness.
func result(p kyccore.Process, verified, confirmed bool) map[string]any {
	return map[string]any{
		p.ResultField(): assert.And(
			assert.Defined(),
			assert.Build(map[string]any{
				"verified":  truthiness(verified),
				"confirmed": truthiness(confirmed),
			}),
		),
	}
}

func truthiness(want bool) assert.Assertion {
	if want {
		return assert.Truthy()
	}
	return assert.Falsy()
}
