package accounts

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// State names the stages a request moves through. Transitions are strictly
// sequential; any stage failure jumps to normalization and then completion.
type State string

const (
	StateReceived      State = "received"
	StateLogged        State = "logged"
	StateValidated     State = "validated"
	StateAuthenticated State = "authenticated"
	StateExecuted      State = "executed"
	StateNormalized    State = "normalized"
	StateCompleted     State = "completed"
)

// RequestContext is the mutable unit threaded through the pipeline for one
// inbound call. It is owned exclusively by the invocation that created it
// and is never shared across concurrent requests.
type RequestContext struct {
	Resource  Resource
	Operation Operation

	// ID is the resolved path parameter (entity id), when present.
	ID string

	Data  map[string]any
	Query map[string]any

	// Provider names the inbound transport ("rest"). Empty means the call
	// originated inside the process; server-to-server calls are implicitly
	// trusted and bypass authentication.
	Provider string

	Identity *Identity
	Result   any
	Err      *goerrors.Error

	state State
}

// State returns the stage the request last completed.
func (rc *RequestContext) State() State { return rc.state }

// Policy declares the authentication requirements of one operation.
type Policy struct {
	Authenticate bool
	RequireAdmin bool
}

// ResourceAction exposes the fixed service operations for one resource,
// constructed once with its dependencies bound. Operations a resource does
// not support return a method-not-allowed error.
type ResourceAction interface {
	Create(ctx context.Context, rc *RequestContext) (any, error)
	Find(ctx context.Context, rc *RequestContext) (any, error)
	Get(ctx context.Context, rc *RequestContext) (any, error)
	Patch(ctx context.Context, rc *RequestContext) (any, error)
	Update(ctx context.Context, rc *RequestContext) (any, error)
	Remove(ctx context.Context, rc *RequestContext) (any, error)
}

// Unsupported rejects every operation. Embed it to implement only a subset
// of ResourceAction.
type Unsupported struct{}

func (Unsupported) Create(ctx context.Context, rc *RequestContext) (any, error) {
	return nil, errMethodNotAllowed(rc)
}

func (Unsupported) Find(ctx context.Context, rc *RequestContext) (any, error) {
	return nil, errMethodNotAllowed(rc)
}

func (Unsupported) Get(ctx context.Context, rc *RequestContext) (any, error) {
	return nil, errMethodNotAllowed(rc)
}

func (Unsupported) Patch(ctx context.Context, rc *RequestContext) (any, error) {
	return nil, errMethodNotAllowed(rc)
}

func (Unsupported) Update(ctx context.Context, rc *RequestContext) (any, error) {
	return nil, errMethodNotAllowed(rc)
}

func (Unsupported) Remove(ctx context.Context, rc *RequestContext) (any, error) {
	return nil, errMethodNotAllowed(rc)
}

func errMethodNotAllowed(rc *RequestContext) error {
	return Normalize(
		fmt.Sprintf("Method %s is not allowed on path /%s.", rc.Operation, rc.Resource),
		nil, 405,
	)
}

type resourceEntry struct {
	action   ResourceAction
	policies map[Operation]Policy
	defaults map[Operation]int
}

func (e *resourceEntry) defaultStatus(op Operation) int {
	if status, ok := e.defaults[op]; ok {
		return status
	}
	return 500
}

// Pipeline orchestrates, per resource operation: validate, authenticate,
// execute, normalize. All collaborators are bound at construction; nothing
// is looked up from ambient shared state.
type Pipeline struct {
	registry  *Registry
	auther    *Authenticator
	resources map[Resource]*resourceEntry
	valOpts   Options
	cfg       Config
	logger    Logger
	reporter  Reporter
}

type PipelineOption func(*Pipeline)

func WithLogger(logger Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithReporter configures the optional completion side channel.
func WithReporter(reporter Reporter) PipelineOption {
	return func(p *Pipeline) {
		p.reporter = reporter
	}
}

// WithValidationOptions overrides the validator options.
func WithValidationOptions(opts Options) PipelineOption {
	return func(p *Pipeline) {
		p.valOpts = opts
	}
}

// NewPipeline returns a pipeline wired with explicit dependencies.
func NewPipeline(registry *Registry, auther *Authenticator, cfg Config, opts ...PipelineOption) *Pipeline {
	if registry == nil {
		panic("Missing Registry in pipeline...")
	}

	if auther == nil {
		panic("Missing Authenticator in pipeline...")
	}

	p := &Pipeline{
		registry:  registry,
		auther:    auther,
		resources: map[Resource]*resourceEntry{},
		valOpts:   DefaultOptions(),
		cfg:       cfg,
		logger:    defLogger{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Register binds a resource action together with its per-operation policy
// table and default error statuses. Call during wiring, before serving.
func (p *Pipeline) Register(resource Resource, action ResourceAction, policies map[Operation]Policy, defaults map[Operation]int) {
	p.resources[resource] = &resourceEntry{
		action:   action,
		policies: policies,
		defaults: defaults,
	}
}

// Run executes the hook chain for one request. The context is created fresh
// per inbound call and discarded afterwards; there is no mid-pipeline abort.
func (p *Pipeline) Run(ctx context.Context, rc *RequestContext) (any, error) {
	rc.state = StateReceived

	entry, ok := p.resources[rc.Resource]
	if !ok {
		return p.fail(ctx, rc, Normalize(
			fmt.Sprintf("No service registered on path /%s.", rc.Resource),
			nil, 404,
		))
	}

	p.logRequest(rc)
	rc.state = StateLogged

	if err := p.validate(rc); err != nil {
		return p.fail(ctx, rc, err)
	}
	rc.state = StateValidated

	if err := p.authenticate(ctx, rc, entry); err != nil {
		return p.fail(ctx, rc, err)
	}
	rc.state = StateAuthenticated

	result, err := p.execute(ctx, rc, entry)
	if err != nil {
		return p.fail(ctx, rc, EnsureNormalized(err, nil, entry.defaultStatus(rc.Operation)))
	}
	rc.state = StateExecuted

	rc.Result = result
	rc.state = StateNormalized

	p.complete(ctx, rc)
	return rc.Result, nil
}

func (p *Pipeline) validate(rc *RequestContext) *goerrors.Error {
	schema, err := p.registry.Get(rc.Resource, rc.Operation)
	if err != nil {
		return EnsureNormalized(err, nil, 500)
	}

	in, err := Validate(Input{Data: rc.Data, Query: rc.Query}, schema, p.valOpts)
	if err != nil {
		return EnsureNormalized(err, nil, 400)
	}

	rc.Data = in.Data
	rc.Query = in.Query
	return nil
}

func (p *Pipeline) authenticate(ctx context.Context, rc *RequestContext, entry *resourceEntry) *goerrors.Error {
	policy := entry.policies[rc.Operation]
	if !policy.Authenticate {
		return nil
	}

	// Calls without a transport provider come from the server itself.
	if rc.Provider == "" {
		return nil
	}

	token, _ := rc.Query["id_token"].(string)
	if token == "" {
		return Normalize("Id token is required.", nil, 401)
	}

	identity, err := p.auther.Authenticate(ctx, token, rc.ID, policy.RequireAdmin)
	if err != nil {
		return EnsureNormalized(err, map[string]any{"id_token": token}, 401)
	}

	rc.Identity = identity
	return nil
}

func (p *Pipeline) execute(ctx context.Context, rc *RequestContext, entry *resourceEntry) (any, error) {
	if p.cfg.DisableNewAccounts && rc.Resource == ResourceAccounts && rc.Operation == OpCreate {
		return nil, Normalize("New account registration is disabled.", nil, 405)
	}

	switch rc.Operation {
	case OpCreate:
		return entry.action.Create(ctx, rc)
	case OpFind:
		return entry.action.Find(ctx, rc)
	case OpGet:
		return entry.action.Get(ctx, rc)
	case OpPatch:
		return entry.action.Patch(ctx, rc)
	case OpUpdate:
		return entry.action.Update(ctx, rc)
	case OpRemove:
		return entry.action.Remove(ctx, rc)
	default:
		return nil, errMethodNotAllowed(rc)
	}
}

func (p *Pipeline) fail(ctx context.Context, rc *RequestContext, err *goerrors.Error) (any, error) {
	rc.Err = err
	rc.state = StateNormalized
	p.complete(ctx, rc)
	return nil, err
}

func (p *Pipeline) complete(ctx context.Context, rc *RequestContext) {
	rc.state = StateCompleted

	if p.cfg.LogRequests {
		if rc.Err != nil {
			p.logger.Error("New %s failure on path /%s -> %s: %s %s",
				rc.Operation, rc.Resource,
				rc.Err.TextCode, rc.Err.Message,
				print.MaybePrettyJSON(rc.Err.Metadata),
			)
		} else {
			p.logger.Info("New %s success on path /%s -> %s",
				rc.Operation, rc.Resource,
				print.MaybePrettyJSON(rc.Result),
			)
		}
	}

	if p.reporter == nil {
		return
	}

	// Reporting must never cause a finished request to fail.
	if err := p.reporter.Report(ctx, rc); err != nil {
		p.logger.Error("Reporting error -> %v", err)
	}
}

func (p *Pipeline) logRequest(rc *RequestContext) {
	if !p.cfg.LogRequests {
		return
	}

	p.logger.Info("New %s request on path /%s -> %s",
		rc.Operation, rc.Resource,
		print.MaybePrettyJSON(map[string]any{
			"data":  rc.Data,
			"id":    rc.ID,
			"query": rc.Query,
		}),
	)
}
