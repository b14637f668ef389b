package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/chalanpro/tenant-gateway/pkg/cache"
	"github.com/chalanpro/tenant-gateway/pkg/config"
	"github.com/chalanpro/tenant-gateway/pkg/dao"
	"github.com/chalanpro/tenant-gateway/pkg/db"
	"github.com/chalanpro/tenant-gateway/pkg/handler"
	"github.com/chalanpro/tenant-gateway/pkg/instrumentation"
	"github.com/chalanpro/tenant-gateway/pkg/instrumentation/custom"
	"github.com/chalanpro/tenant-gateway/pkg/notifications"
	"github.com/chalanpro/tenant-gateway/pkg/onboarding"
	"github.com/chalanpro/tenant-gateway/pkg/router"
	"github.com/chalanpro/tenant-gateway/pkg/schema"
	"github.com/chalanpro/tenant-gateway/pkg/tenancy"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// Gateway is everything the serve command wires together.
type Gateway struct {
	Daos      *dao.DaoRegistry
	Directory dao.DomainDao
	AllowList *tenancy.AllowList
	Resolver  *tenancy.Resolver
	Gateway   *tenancy.Gateway
	Broker    notifications.Broker
	Metrics   *instrumentation.Metrics
	Services  *handler.Services
}

// NewGateway builds the gateway over an open database. redisClient may be
// nil, then lookups are not cached and notifications stay in process.
func NewGateway(conf *config.Configuration, redisClient *redis.Client, metrics *instrumentation.Metrics) *Gateway {
	daos := dao.GetDaoRegistry(db.DB)

	var c cache.Cache = cache.NewNoOpCache()
	if redisClient != nil {
		c = cache.NewRedisCache(redisClient, conf.Clients.Redis.Expiration.Tenant)
	} else {
		log.Warn().Msg("No tenant cache in use")
	}
	directory := dao.NewCachedDomainDao(daos.Domain, c)

	allow := tenancy.NewAllowList(directory, tenancy.AllowListOptions{
		TTL:            conf.Gateway.AllowListTTL,
		Debug:          conf.Gateway.Debug,
		DevPorts:       conf.Gateway.DevPorts,
		AllowedHosts:   conf.Gateway.AllowedHosts,
		TrustedOrigins: conf.Gateway.TrustedOrigins,
		Metrics:        metrics,
	})
	resolver := tenancy.NewResolver(directory, tenancy.BreakerSettings{
		MaxFailures: conf.Gateway.Breaker.MaxFailures,
		Timeout:     conf.Gateway.Breaker.Timeout,
	}, metrics)
	gw := tenancy.NewGateway(allow, resolver, schema.NewRouter(db.DB, conf.Gateway.PublicSchema))
	broker := notifications.NewBroker(redisClient)

	return &Gateway{
		Daos:      daos,
		Directory: directory,
		AllowList: allow,
		Resolver:  resolver,
		Gateway:   gw,
		Broker:    broker,
		Metrics:   metrics,
		Services: &handler.Services{
			DaoRegistry:  daos,
			Onboarding:   onboarding.NewService(daos, broker, allow, onboarding.OptionsFromConfig(conf)),
			Broker:       broker,
			AllowList:    allow,
			Metrics:      metrics,
			PublicSchema: conf.Gateway.PublicSchema,
		},
	}
}

func connect(conf *config.Configuration) (*redis.Client, error) {
	if err := db.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if conf.Clients.Redis.Host == "" {
		return nil, nil
	}
	return cache.NewRedisClient(), nil
}

func ServeAction(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conf := config.Get()
	redisClient, err := connect(conf)
	if err != nil {
		return err
	}
	defer db.Close()
	if redisClient != nil {
		defer redisClient.Close()
	}

	metrics := instrumentation.NewMetrics(prometheus.NewRegistry())
	gw := NewGateway(conf, redisClient, metrics)
	defer gw.Broker.Close()

	if err := gw.AllowList.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("initial allow-list load failed, static hosts only")
	}

	server := router.ConfigureEchoWithMetrics(gw.Gateway, gw.Services, metrics)
	server.HideBanner = true
	metricsServer := echo.New()
	metricsServer.HideBanner = true
	metricsServer.HidePort = true
	metricsServer.GET(conf.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(
		metrics.Registry(),
		promhttp.HandlerOpts{Registry: metrics.Registry()},
	)))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return start(server, fmt.Sprintf(":%d", conf.Server.Port))
	})
	g.Go(func() error {
		return start(metricsServer, fmt.Sprintf(":%d", conf.Metrics.Port))
	})
	g.Go(func() error {
		gw.AllowList.Run(ctx)
		return nil
	})
	g.Go(func() error {
		if collector := custom.NewCollector(ctx, metrics, gw.Daos.Tenant); collector != nil {
			collector.Run()
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("stopping gateway")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return errors.Join(server.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})
	return g.Wait()
}

func start(e *echo.Echo, address string) error {
	log.Info().Str("address", address).Msg("starting server")
	if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server on %s: %w", address, err)
	}
	return nil
}
