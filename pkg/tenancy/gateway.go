package tenancy

import (
	"context"
	"errors"
	"fmt"

	"github.com/chalanpro/tenant-gateway/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Stage is a step of the gateway pipeline.
type Stage int

const (
	StageReceived Stage = iota
	StageHostnameExtracted
	StageAllowChecked
	StageTenantResolved
	StageContextBound
	StageDispatched
	StageCompleted
	StageFailed
)

var stageNames = [...]string{
	"RECEIVED",
	"HOSTNAME_EXTRACTED",
	"ALLOW_CHECKED",
	"TENANT_RESOLVED",
	"CONTEXT_BOUND",
	"DISPATCHED",
	"COMPLETED",
	"FAILED",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

var ErrDisallowedHost = errors.New("host not allowed")

// StageError is returned by Serve when the pipeline fails. Stage is the last
// stage reached before the failure.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("gateway failed after %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage a Serve error happened after, false when err
// did not come from the gateway pipeline.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return StageFailed, false
}

// Binder scopes a schema context around body. It must release the context on
// every exit path of body. Scope fixes the tenant in ctx without holding any
// storage resource; schema binding then happens per storage call.
type Binder interface {
	WithTenantContext(ctx context.Context, tenant *models.Tenant, body func(ctx context.Context) error) error
	Scope(ctx context.Context, tenant *models.Tenant) context.Context
}

// DispatchFunc is the downstream handler. ctx carries the resolved tenant
// (see TenantFromContext) and the schema bound session.
type DispatchFunc func(ctx context.Context) error

type Gateway struct {
	allow    *AllowList
	resolver *Resolver
	binder   Binder
}

func NewGateway(allow *AllowList, resolver *Resolver, binder Binder) *Gateway {
	return &Gateway{allow: allow, resolver: resolver, binder: binder}
}

func (g *Gateway) AllowList() *AllowList {
	return g.allow
}

// pipeline tracks the stage reached by one Serve or ServeStream call.
type pipeline struct {
	stage  Stage
	logger zerolog.Logger
}

func (p *pipeline) fail(err error) error {
	return &StageError{Stage: p.stage, Err: err}
}

// admit extracts and normalizes the hostname, checks it against the
// allow-list and resolves the tenant. A disallowed host stops before any
// tenant lookup. Directory faults resolve to nil, the public schema.
func (g *Gateway) admit(ctx context.Context, src HostSource, p *pipeline) (*models.Tenant, error) {
	p.stage = StageReceived
	hostname := Normalize(ExtractHostname(src))
	p.stage = StageHostnameExtracted
	p.logger = log.Ctx(ctx).With().Str("hostname", hostname).Logger()

	if hostname != "" {
		if err := g.allow.RefreshIfStale(ctx); err != nil {
			p.logger.Warn().Err(err).Msg("allow-list refresh failed, using current snapshot")
		}
		if !g.allow.IsAllowedHost(hostname) {
			g.allow.metrics.RecordRejection()
			p.logger.Warn().Msg("rejected request for disallowed host")
			return nil, p.fail(ErrDisallowedHost)
		}
	}
	p.stage = StageAllowChecked

	if err := ctx.Err(); err != nil {
		return nil, p.fail(err)
	}
	tenant := g.resolver.Resolve(ctx, hostname)
	p.stage = StageTenantResolved

	if err := ctx.Err(); err != nil {
		return nil, p.fail(err)
	}
	return tenant, nil
}

// Serve runs one request through the pipeline: admit, bind the tenant schema
// on a pooled connection and dispatch. If ctx is done before the context is
// bound, dispatch is never called.
func (g *Gateway) Serve(ctx context.Context, src HostSource, dispatch DispatchFunc) error {
	p := &pipeline{}
	tenant, err := g.admit(ctx, src, p)
	if err != nil {
		return err
	}
	err = g.binder.WithTenantContext(ctx, tenant, func(bound context.Context) error {
		p.stage = StageContextBound
		if err := bound.Err(); err != nil {
			return err
		}
		p.stage = StageDispatched
		return dispatch(WithTenant(bound, tenant))
	})
	if err != nil {
		if p.stage != StageDispatched {
			p.logger.Error().Err(err).Str("stage", p.stage.String()).Msg("could not bind tenant context")
		}
		return p.fail(err)
	}
	return nil
}

// ServeStream runs a streaming connection through the pipeline. The tenant
// is fixed once, at accept time, for the lifetime of the connection, but no
// pooled connection is held while the stream is open.
func (g *Gateway) ServeStream(ctx context.Context, src HostSource, dispatch DispatchFunc) error {
	p := &pipeline{}
	tenant, err := g.admit(ctx, src, p)
	if err != nil {
		return err
	}
	scoped := g.binder.Scope(ctx, tenant)
	p.stage = StageContextBound
	if err := scoped.Err(); err != nil {
		return p.fail(err)
	}
	p.stage = StageDispatched
	if err := dispatch(WithTenant(scoped, tenant)); err != nil {
		return p.fail(err)
	}
	return nil
}

type tenantKey struct{}

// WithTenant stores the resolved tenant in ctx. A nil tenant means the
// public schema.
func WithTenant(ctx context.Context, tenant *models.Tenant) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenant)
}

// TenantFromContext returns the tenant bound by the gateway, nil under
// public routing.
func TenantFromContext(ctx context.Context) *models.Tenant {
	t, _ := ctx.Value(tenantKey{}).(*models.Tenant)
	return t
}
