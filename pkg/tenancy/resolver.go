package tenancy

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chalanpro/tenant-gateway/pkg/instrumentation"
	"github.com/chalanpro/tenant-gateway/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

// Directory is the read side of the tenant directory used by the resolver.
type Directory interface {
	LookupByDomain(ctx context.Context, domain string) (*models.Tenant, error)
	LookupByLabel(ctx context.Context, label string) (*models.Tenant, error)
}

type BreakerSettings struct {
	MaxFailures uint32
	Timeout     time.Duration
}

type Resolver struct {
	dir     Directory
	breaker *gobreaker.CircuitBreaker[*models.Tenant]
	metrics *instrumentation.Metrics
}

func NewResolver(dir Directory, settings BreakerSettings, metrics *instrumentation.Metrics) *Resolver {
	maxFailures := settings.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	return &Resolver{
		dir:     dir,
		metrics: metrics,
		breaker: gobreaker.NewCircuitBreaker[*models.Tenant](gobreaker.Settings{
			Name:    "tenant-directory",
			Timeout: settings.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("tenant directory breaker changed state")
			},
		}),
	}
}

// Resolve returns the tenant serving hostname, or nil for public routing.
//
// An exact domain match wins when its tenant is active; an exact match on an
// inactive tenant resolves to nil. Otherwise the first label of a multi label
// hostname is matched as a substring of registered domains of active tenants.
// This heuristic is loose on purpose: label "ab" also matches "abc.example.com".
// Directory errors never reach the caller, they are logged and resolve to nil.
func (r *Resolver) Resolve(ctx context.Context, hostname string) *models.Tenant {
	hostname = Normalize(hostname)
	if hostname == "" {
		r.metrics.RecordResolution(instrumentation.OutcomeNone)
		return nil
	}
	logger := log.Ctx(ctx).With().Str("hostname", hostname).Logger()

	tenant, err := r.breaker.Execute(func() (*models.Tenant, error) {
		return r.dir.LookupByDomain(ctx, hostname)
	})
	if err != nil {
		return r.failed(ctx, &logger, err)
	}
	if tenant != nil {
		if !tenant.IsActive {
			logger.Debug().Str("schema", tenant.SchemaName).Msg("domain belongs to an inactive tenant")
			r.metrics.RecordResolution(instrumentation.OutcomeNone)
			return nil
		}
		r.metrics.RecordResolution(instrumentation.OutcomeExact)
		return tenant
	}

	label, _, found := strings.Cut(hostname, ".")
	if found && label != "" {
		tenant, err = r.breaker.Execute(func() (*models.Tenant, error) {
			return r.dir.LookupByLabel(ctx, label)
		})
		if err != nil {
			return r.failed(ctx, &logger, err)
		}
		if tenant != nil {
			logger.Debug().Str("label", label).Str("schema", tenant.SchemaName).Msg("tenant matched by subdomain label")
			r.metrics.RecordResolution(instrumentation.OutcomeSubdomain)
			return tenant
		}
	}

	logger.Debug().Msg("no tenant for hostname, using public schema")
	r.metrics.RecordResolution(instrumentation.OutcomeNone)
	return nil
}

func (r *Resolver) failed(ctx context.Context, logger *zerolog.Logger, err error) *models.Tenant {
	if ctx.Err() != nil {
		logger.Debug().Err(err).Msg("tenant lookup abandoned")
	} else {
		logger.Error().Err(err).Msg("tenant directory unavailable, using public schema")
	}
	r.metrics.RecordResolution(instrumentation.OutcomeError)
	return nil
}
