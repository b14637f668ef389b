// Package onboarding creates tenants: the tenant row, its postgres schema and
// its primary domain, in one transaction of the public schema.
package onboarding

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/chalanpro/tenant-gateway/pkg/api"
	"github.com/chalanpro/tenant-gateway/pkg/config"
	"github.com/chalanpro/tenant-gateway/pkg/dao"
	ce "github.com/chalanpro/tenant-gateway/pkg/errors"
	"github.com/chalanpro/tenant-gateway/pkg/models"
	"github.com/chalanpro/tenant-gateway/pkg/notifications"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	minCompanyNameLength = 3
	maxDomainAttempts    = 9999
)

type Result struct {
	Tenant models.Tenant
	Domain string
	URL    string
}

// Invalidator is told when a new domain must be admitted, the allow-list.
type Invalidator interface {
	Invalidate()
}

type Options struct {
	BaseDomain   string
	PublicSchema string
	Debug        bool
	FrontendPort int
}

func OptionsFromConfig(c *config.Configuration) Options {
	return Options{
		BaseDomain:   c.Gateway.BaseDomain,
		PublicSchema: c.Gateway.PublicSchema,
		Debug:        c.Gateway.Debug,
		FrontendPort: c.Gateway.FrontendPort,
	}
}

type Service struct {
	daos   *dao.DaoRegistry
	broker notifications.Broker
	allow  Invalidator
	opts   Options
}

func NewService(daos *dao.DaoRegistry, broker notifications.Broker, allow Invalidator, opts Options) *Service {
	if opts.BaseDomain == "" {
		opts.BaseDomain = config.DefaultBaseDomain
	}
	if opts.PublicSchema == "" {
		opts.PublicSchema = config.DefaultPublicSchema
	}
	return &Service{daos: daos, broker: broker, allow: allow, opts: opts}
}

// Normalize trims the request, maps an unknown client type to general and
// keeps only known preferences.
func Normalize(req *api.OnboardingRequest) {
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.Email = strings.TrimSpace(req.Email)
	req.Address = strings.TrimSpace(req.Address)
	req.ClientType = strings.TrimSpace(req.ClientType)
	if !config.ValidClientType(req.ClientType) {
		req.ClientType = config.ClientTypeGeneral
	}
	req.Preferences = config.FilterPreferences(req.Preferences)
}

// Validate returns a *ce.ValidationError listing every rejected field.
func (s *Service) Validate(ctx context.Context, req *api.OnboardingRequest) error {
	Normalize(req)
	verr := &ce.ValidationError{}

	if len([]rune(req.CompanyName)) < minCompanyNameLength {
		verr.Add("company_name", "Company name must be at least 3 characters long.")
	} else if len(req.CompanyName) > models.MaxTenantNameLength {
		verr.Add("company_name", "Company name cannot exceed 100 characters.")
	} else {
		taken, err := s.daos.Tenant.NameTaken(ctx, req.CompanyName)
		if err != nil {
			return err
		}
		if taken {
			verr.Add("company_name", "A company with this name already exists.")
		}
	}

	if req.Email == "" {
		verr.Add("email", "Email is required.")
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		verr.Add("email", "Enter a valid email address.")
	} else {
		taken, err := s.daos.Tenant.EmailTaken(ctx, req.Email)
		if err != nil {
			return err
		}
		if taken {
			verr.Add("email", "This email is already registered.")
		}
	}
	return verr.OrNil()
}

// CreateTenant validates req and provisions the tenant. Once committed the
// allow-list is invalidated and tenant.created is published; a failed
// publication is logged and does not fail the onboarding.
func (s *Service) CreateTenant(ctx context.Context, req api.OnboardingRequest) (*Result, error) {
	if err := s.Validate(ctx, &req); err != nil {
		return nil, err
	}

	var result Result
	err := s.daos.Transaction(ctx, func(tx *dao.DaoRegistry) error {
		schemaName, err := models.GenerateSchemaName(req.CompanyName, func(candidate string) (bool, error) {
			if candidate == s.opts.PublicSchema {
				return true, nil
			}
			return tx.Tenant.SchemaNameTaken(ctx, candidate)
		})
		if err != nil {
			return err
		}
		tenantID, err := models.GenerateTenantID(req.CompanyName, func(candidate string) (bool, error) {
			return tx.Tenant.TenantIDTaken(ctx, candidate)
		})
		if err != nil {
			return err
		}

		tenant := models.Tenant{
			Name:        req.CompanyName,
			SchemaName:  schemaName,
			TenantID:    tenantID,
			Email:       optional(req.Email),
			ClientType:  req.ClientType,
			Address:     optional(req.Address),
			Preferences: pq.StringArray(req.Preferences),
			OnTrial:     true,
			IsActive:    true,
		}
		if err := tx.Tenant.Create(ctx, &tenant); err != nil {
			return err
		}
		if err := tx.Tenant.CreateSchema(ctx, schemaName); err != nil {
			return err
		}

		domainName, err := s.freeDomain(ctx, tx, tenant.Subdomain())
		if err != nil {
			return err
		}
		domain := models.Domain{Domain: domainName, TenantRef: tenant.ID, IsPrimary: true}
		if err := tx.Domain.Create(ctx, &domain); err != nil {
			return err
		}

		exists, err := tx.Tenant.SchemaExists(ctx, schemaName)
		if err != nil {
			return err
		}
		if !exists {
			return &ce.DaoError{Message: fmt.Sprintf("Schema %s was not created", schemaName)}
		}

		tenant.Domains = []models.Domain{domain}
		result = Result{Tenant: tenant, Domain: domainName}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.URL = s.LoginURL(result.Domain)
	if s.allow != nil {
		s.allow.Invalidate()
	}
	s.publishCreated(ctx, result.Tenant)
	log.Ctx(ctx).Info().
		Str("schema", result.Tenant.SchemaName).
		Str("tenant_id", result.Tenant.TenantID).
		Str("domain", result.Domain).
		Msg("tenant onboarded")
	return &result, nil
}

func (s *Service) freeDomain(ctx context.Context, tx *dao.DaoRegistry, subdomain string) (string, error) {
	for attempt := 0; attempt <= maxDomainAttempts; attempt++ {
		candidate := models.DomainCandidate(subdomain, s.opts.BaseDomain, attempt)
		taken, err := tx.Domain.DomainTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", &ce.DaoError{Message: "Could not find a free domain for " + subdomain, Conflict: true}
}

// LoginURL is where the new tenant signs in, the frontend dev server in debug.
func (s *Service) LoginURL(domain string) string {
	if s.opts.Debug {
		return fmt.Sprintf("http://%s:%d/login/", domain, s.opts.FrontendPort)
	}
	return fmt.Sprintf("https://%s/login/", domain)
}

func (s *Service) publishCreated(ctx context.Context, tenant models.Tenant) {
	if s.broker == nil {
		return
	}
	msg, err := notifications.NewMessage(notifications.TenantCreated, map[string]string{
		"name":        tenant.Name,
		"schema_name": tenant.SchemaName,
		"tenant_id":   tenant.TenantID,
	})
	if err == nil {
		err = s.broker.Publish(ctx, notifications.Topic(s.opts.PublicSchema, notifications.TenantsGroup), msg)
	}
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("schema", tenant.SchemaName).Msg("could not publish tenant.created")
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
