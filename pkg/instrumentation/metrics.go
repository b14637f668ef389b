package instrumentation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	NameSpace                = "tenant_gateway"
	HttpStatusHistogram      = "http_status_histogram"
	TenantResolutionsTotal   = "tenant_resolutions_total"
	AllowListRejectionsTotal = "allow_list_rejections_total"
	AllowListRefreshesTotal  = "allow_list_refreshes_total"
	AllowListEntries         = "allow_list_entries"
	TenantsTotal             = "tenants_total"
	WebsocketConnections     = "websocket_connections"
)

// Resolution outcomes
const (
	OutcomeExact     = "exact"
	OutcomeSubdomain = "subdomain"
	OutcomeNone      = "none"
	OutcomeError     = "error"
)

type Metrics struct {
	HttpStatusHistogram prometheus.HistogramVec

	TenantResolutionsTotal   prometheus.CounterVec
	AllowListRejectionsTotal prometheus.Counter
	AllowListRefreshesTotal  prometheus.CounterVec
	AllowListEntries         prometheus.Gauge
	TenantsTotal             prometheus.GaugeVec
	WebsocketConnections     prometheus.Gauge

	reg *prometheus.Registry
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		panic("reg cannot be nil")
	}
	metrics := &Metrics{
		reg: reg,
		HttpStatusHistogram: *promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: NameSpace,
			Name:      HttpStatusHistogram,
			Help:      "Duration of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status", "method", "path"}),
		TenantResolutionsTotal: *promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: NameSpace,
			Name:      TenantResolutionsTotal,
			Help:      "Tenant resolutions by outcome",
		}, []string{"outcome"}),
		AllowListRejectionsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: NameSpace,
			Name:      AllowListRejectionsTotal,
			Help:      "Requests refused because the host or origin is not allowed",
		}),
		AllowListRefreshesTotal: *promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: NameSpace,
			Name:      AllowListRefreshesTotal,
			Help:      "Allow-list refreshes from the tenant directory by result",
		}, []string{"result"}),
		AllowListEntries: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: NameSpace,
			Name:      AllowListEntries,
			Help:      "Hosts and origins currently in the allow-list",
		}),
		TenantsTotal: *promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: NameSpace,
			Name:      TenantsTotal,
			Help:      "Number of tenants",
		}, []string{"status"}),
		WebsocketConnections: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: NameSpace,
			Name:      WebsocketConnections,
			Help:      "Open websocket notification connections",
		}),
	}

	reg.MustRegister(collectors.NewBuildInfoCollector())

	return metrics
}

// The Record helpers accept a nil receiver so components can run without metrics.

func (m *Metrics) RecordResolution(outcome string) {
	if m != nil {
		m.TenantResolutionsTotal.With(prometheus.Labels{"outcome": outcome}).Inc()
	}
}

func (m *Metrics) RecordRejection() {
	if m != nil {
		m.AllowListRejectionsTotal.Inc()
	}
}

func (m *Metrics) RecordRefresh(success bool, entries int) {
	if m == nil {
		return
	}
	result := "failed"
	if success {
		result = "success"
		m.AllowListEntries.Set(float64(entries))
	}
	m.AllowListRefreshesTotal.With(prometheus.Labels{"result": result}).Inc()
}

func (m *Metrics) RecordWebsocket(delta float64) {
	if m != nil {
		m.WebsocketConnections.Add(delta)
	}
}

func (m Metrics) Registry() *prometheus.Registry {
	return m.reg
}
