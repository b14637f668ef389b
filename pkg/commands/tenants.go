package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/chalanpro/tenant-gateway/pkg/api"
	"github.com/chalanpro/tenant-gateway/pkg/config"
	"github.com/chalanpro/tenant-gateway/pkg/dao"
	"github.com/chalanpro/tenant-gateway/pkg/db"
	"github.com/chalanpro/tenant-gateway/pkg/instrumentation"
	"github.com/chalanpro/tenant-gateway/pkg/models"
	"github.com/chalanpro/tenant-gateway/pkg/onboarding"
	"github.com/chalanpro/tenant-gateway/pkg/tenancy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// openGateway connects to the stores and builds the gateway for one-shot commands.
func openGateway() (*Gateway, func(), error) {
	conf := config.Get()
	redisClient, err := connect(conf)
	if err != nil {
		return nil, nil, err
	}
	gw := NewGateway(conf, redisClient, instrumentation.NewMetrics(prometheus.NewRegistry()))
	closeFn := func() {
		gw.Broker.Close()
		if redisClient != nil {
			redisClient.Close()
		}
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("could not close database")
		}
	}
	return gw, closeFn, nil
}

func CreateTenantAction(c *cli.Context) error {
	gw, closeFn, err := openGateway()
	if err != nil {
		return err
	}
	defer closeFn()

	// this process owns no serving allow-list, so nothing to invalidate
	conf := config.Get()
	service := onboarding.NewService(gw.Daos, gw.Broker, nil, onboarding.OptionsFromConfig(conf))
	if err := createTenant(c.Context, service, api.OnboardingRequest{
		CompanyName: c.String("name"),
		Email:       c.String("email"),
		ClientType:  c.String("client-type"),
	}, c.App.Writer); err != nil {
		return err
	}
	printRefreshNote(c.App.Writer, conf.Gateway.AllowListTTL)
	return nil
}

// printRefreshNote tells the operator when running servers admit domains
// written by a command: on their next allow-list refresh.
func printRefreshNote(w io.Writer, ttl time.Duration) {
	fmt.Fprintf(w, "Running gateways admit the new domains on their next allow-list refresh (within %s).\n", ttl)
}

func createTenant(ctx context.Context, service *onboarding.Service, req api.OnboardingRequest, w io.Writer) error {
	result, err := service.CreateTenant(ctx, req)
	if err != nil {
		return fmt.Errorf("could not create tenant: %w", err)
	}
	fmt.Fprintf(w, "Created tenant %s\n", result.Tenant.Name)
	fmt.Fprintf(w, "  schema:    %s\n", result.Tenant.SchemaName)
	fmt.Fprintf(w, "  tenant id: %s\n", result.Tenant.TenantID)
	fmt.Fprintf(w, "  domain:    %s\n", result.Domain)
	fmt.Fprintf(w, "  login:     %s\n", result.URL)
	return nil
}

func ListTenantsAction(c *cli.Context) error {
	gw, closeFn, err := openGateway()
	if err != nil {
		return err
	}
	defer closeFn()
	return listTenants(c.Context, gw.Daos, !c.Bool("all"), c.App.Writer)
}

func listTenants(ctx context.Context, daos *dao.DaoRegistry, activeOnly bool, w io.Writer) error {
	tenants, err := daos.Tenant.List(ctx, activeOnly)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSCHEMA\tTENANT ID\tPRIMARY DOMAIN\tSTATUS")
	for _, t := range tenants {
		domains, err := daos.Domain.ListForTenant(ctx, t.ID)
		if err != nil {
			return err
		}
		primary := "-"
		for _, d := range domains {
			if d.IsPrimary {
				primary = d.Domain
			}
		}
		status := "active"
		if !t.IsActive {
			status = "inactive"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.Name, t.SchemaName, t.TenantID, primary, status)
	}
	return tw.Flush()
}

func DebugTenantAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: debug-tenant <hostname>", 2)
	}
	gw, closeFn, err := openGateway()
	if err != nil {
		return err
	}
	defer closeFn()
	return debugTenant(c.Context, gw.Daos, gw.Resolver, c.Args().First(), c.App.Writer)
}

func debugTenant(ctx context.Context, daos *dao.DaoRegistry, resolver *tenancy.Resolver, raw string, w io.Writer) error {
	hostname := tenancy.Normalize(raw)
	fmt.Fprintf(w, "hostname:     %q\n", hostname)

	exact, err := daos.Domain.LookupByDomain(ctx, hostname)
	if err != nil {
		return err
	}
	if exact == nil {
		fmt.Fprintln(w, "exact match:  none")
	} else {
		fmt.Fprintf(w, "exact match:  %s (schema %s, active %t)\n", exact.Name, exact.SchemaName, exact.IsActive)
		exists, err := daos.Tenant.SchemaExists(ctx, exact.SchemaName)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "schema found: %t\n", exists)
	}

	if tenant := resolver.Resolve(ctx, hostname); tenant != nil {
		fmt.Fprintf(w, "routes to:    %s (schema %s)\n", tenant.Name, tenant.SchemaName)
	} else {
		fmt.Fprintln(w, "routes to:    public schema")
	}
	return nil
}

func SetupPublicDomainsAction(c *cli.Context) error {
	gw, closeFn, err := openGateway()
	if err != nil {
		return err
	}
	defer closeFn()

	// domain writes go through the cached directory so stale lookups are evicted
	daos := &dao.DaoRegistry{Tenant: gw.Daos.Tenant, Domain: gw.Directory}
	if err := setupPublicDomains(c.Context, daos, config.Get().Gateway.PublicSchema, c.StringSlice("domains"), c.App.Writer); err != nil {
		return err
	}
	printRefreshNote(c.App.Writer, config.Get().Gateway.AllowListTTL)
	return nil
}

// setupPublicDomains gets or creates the public tenant and assigns domains to
// it, the first one as primary. A domain held by another tenant is moved.
func setupPublicDomains(ctx context.Context, daos *dao.DaoRegistry, publicSchema string, domains []string, w io.Writer) error {
	public, err := daos.Tenant.FetchByTenantID(ctx, models.PublicTenantID)
	if err != nil {
		return err
	}
	if public == nil {
		public = &models.Tenant{
			Name:       "Public",
			SchemaName: publicSchema,
			TenantID:   models.PublicTenantID,
			ClientType: config.ClientTypeGeneral,
			IsActive:   true,
		}
		if err := daos.Tenant.Create(ctx, public); err != nil {
			return fmt.Errorf("could not create public tenant: %w", err)
		}
		fmt.Fprintf(w, "Created public tenant (schema %s)\n", public.SchemaName)
	}

	first := true
	for _, raw := range domains {
		domain := tenancy.Normalize(raw)
		if domain == "" {
			continue
		}
		if _, err := daos.Domain.Assign(ctx, domain, public.ID, first); err != nil {
			return fmt.Errorf("could not assign %s: %w", domain, err)
		}
		fmt.Fprintf(w, "Assigned %s (primary %t)\n", domain, first)
		first = false
	}
	return nil
}
