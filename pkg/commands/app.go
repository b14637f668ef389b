// Package commands holds the operator CLI of the gateway.
package commands

import (
	"github.com/chalanpro/tenant-gateway/pkg/config"
	"github.com/urfave/cli/v2"
)

func NewApp() *cli.App {
	return &cli.App{
		Name:  config.DefaultAppName,
		Usage: "multi-tenant gateway routing requests to tenant schemas",
		Before: func(c *cli.Context) error {
			config.Load()
			config.ConfigureLogging()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP and WebSocket gateway",
				Action: ServeAction,
			},
			{
				Name:  "migrate",
				Usage: "run public schema migrations",
				Subcommands: []*cli.Command{
					{
						Name:   "up",
						Flags:  []cli.Flag{&cli.IntFlag{Name: "steps", Usage: "number of migrations, all when 0"}},
						Action: MigrateAction("up"),
					},
					{
						Name:   "down",
						Flags:  []cli.Flag{&cli.IntFlag{Name: "steps", Usage: "number of migrations, all when 0"}},
						Action: MigrateAction("down"),
					},
				},
			},
			{
				Name:  "create-tenant",
				Usage: "onboard a tenant from the command line",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "client-type", Value: config.ClientTypeGeneral},
				},
				Action: CreateTenantAction,
			},
			{
				Name:   "list-tenants",
				Usage:  "list active tenants with their primary domain",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "all", Usage: "include inactive tenants"}},
				Action: ListTenantsAction,
			},
			{
				Name:      "debug-tenant",
				Usage:     "show how a hostname is routed",
				ArgsUsage: "<hostname>",
				Action:    DebugTenantAction,
			},
			{
				Name:  "setup-public-domains",
				Usage: "register the domains served from the public schema",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "domains", Value: cli.NewStringSlice("localhost", "127.0.0.1")},
				},
				Action: SetupPublicDomainsAction,
			},
		},
	}
}
