package custom

import (
	"context"
	"time"

	"github.com/chalanpro/tenant-gateway/pkg/dao"
	"github.com/chalanpro/tenant-gateway/pkg/instrumentation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// tickerDelay is in seconds, close to the default scrape interval.
const tickerDelay = 30

// Collector periodically publishes tenant counts from the public schema.
type Collector struct {
	context context.Context
	metrics *instrumentation.Metrics
	dao     dao.TenantDao
}

func NewCollector(context context.Context, metrics *instrumentation.Metrics, tenants dao.TenantDao) *Collector {
	if context == nil {
		return nil
	}
	if metrics == nil {
		return nil
	}
	if tenants == nil {
		return nil
	}
	return &Collector{
		context: context,
		metrics: metrics,
		dao:     tenants,
	}
}

func (c *Collector) iterate() {
	tenants, err := c.dao.List(c.context, false)
	if err != nil {
		log.Ctx(c.context).Error().Err(err).Msg("could not count tenants")
		return
	}
	var active, inactive int
	for _, t := range tenants {
		if t.IsActive {
			active++
		} else {
			inactive++
		}
	}
	c.metrics.TenantsTotal.With(prometheus.Labels{"status": "active"}).Set(float64(active))
	c.metrics.TenantsTotal.With(prometheus.Labels{"status": "inactive"}).Set(float64(inactive))
}

func (c *Collector) Run() {
	log.Info().Msg("starting tenant metrics collector")
	ticker := time.NewTicker(tickerDelay * time.Second)
	defer ticker.Stop()
	c.iterate()
	for {
		select {
		case <-ticker.C:
			c.iterate()
		case <-c.context.Done():
			log.Info().Msg("stopping tenant metrics collector")
			return
		}
	}
}
