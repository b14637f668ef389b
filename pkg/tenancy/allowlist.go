package tenancy

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/chalanpro/tenant-gateway/pkg/instrumentation"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const refreshTimeout = 10 * time.Second

// DomainLister lists the domains of every active tenant.
type DomainLister interface {
	ListActiveDomains(ctx context.Context) ([]string, error)
}

type AllowListOptions struct {
	TTL            time.Duration
	Debug          bool
	DevPorts       []string
	AllowedHosts   []string
	TrustedOrigins []string
	Clock          clock.Clock
	Metrics        *instrumentation.Metrics
}

type snapshot struct {
	hosts     map[string]struct{}
	suffixes  []string
	wildcard  bool
	origins   map[string]struct{}
	refreshed time.Time
}

// AllowList is the set of hostnames and origins admitted at the boundary.
// Readers work on an immutable snapshot; a refresh builds a new snapshot as
// the union of the current one and the directory's active domains and swaps
// it in. Entries are never removed while the process runs.
type AllowList struct {
	dir     DomainLister
	opts    AllowListOptions
	clock   clock.Clock
	snap    atomic.Pointer[snapshot]
	group   singleflight.Group
	metrics *instrumentation.Metrics
	// bumped by Invalidate so a refresh racing with it stays stale
	generation atomic.Uint64
}

func NewAllowList(dir DomainLister, opts AllowListOptions) *AllowList {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	a := &AllowList{
		dir:     dir,
		opts:    opts,
		clock:   opts.Clock,
		metrics: opts.Metrics,
	}

	initial := &snapshot{
		hosts:   map[string]struct{}{},
		origins: map[string]struct{}{},
	}
	for _, h := range opts.AllowedHosts {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case h == "":
		case h == "*":
			initial.wildcard = true
		case strings.HasPrefix(h, "."):
			initial.suffixes = append(initial.suffixes, h)
		default:
			initial.hosts[h] = struct{}{}
		}
	}
	for _, o := range opts.TrustedOrigins {
		if o = normalizeOrigin(o); o != "" {
			initial.origins[o] = struct{}{}
		}
	}
	a.snap.Store(initial)
	return a
}

func normalizeOrigin(origin string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(origin)), "/")
}

// OriginsFor returns the origins a tenant domain is reachable from. In debug
// mode http:// variants on the development ports are added to https://.
func (a *AllowList) OriginsFor(domain string) []string {
	origins := make([]string, 0, len(a.opts.DevPorts)+1)
	if a.opts.Debug {
		for _, port := range a.opts.DevPorts {
			origins = append(origins, fmt.Sprintf("http://%s:%s", domain, port))
		}
	}
	return append(origins, "https://"+domain)
}

// IsAllowedHost reports whether a normalized hostname may be served.
func (a *AllowList) IsAllowedHost(hostname string) bool {
	if hostname == "" {
		return false
	}
	s := a.snap.Load()
	if s.wildcard {
		return true
	}
	if _, ok := s.hosts[hostname]; ok {
		return true
	}
	for _, suffix := range s.suffixes {
		if hostname == suffix[1:] || strings.HasSuffix(hostname, suffix) {
			return true
		}
	}
	return false
}

// IsAllowedOrigin reports whether an Origin header value is trusted.
func (a *AllowList) IsAllowedOrigin(origin string) bool {
	origin = normalizeOrigin(origin)
	if origin == "" {
		return false
	}
	_, ok := a.snap.Load().origins[origin]
	return ok
}

// IsAllowed accepts either a hostname or an origin.
func (a *AllowList) IsAllowed(hostOrOrigin string) bool {
	if strings.Contains(hostOrOrigin, "://") {
		return a.IsAllowedOrigin(hostOrOrigin)
	}
	return a.IsAllowedHost(Normalize(hostOrOrigin))
}

// Origins returns the trusted origins, sorted.
func (a *AllowList) Origins() []string {
	s := a.snap.Load()
	origins := make([]string, 0, len(s.origins))
	for o := range s.origins {
		origins = append(origins, o)
	}
	sort.Strings(origins)
	return origins
}

// Hosts returns the exact hostnames in the list, sorted.
func (a *AllowList) Hosts() []string {
	s := a.snap.Load()
	hosts := make([]string, 0, len(s.hosts))
	for h := range s.hosts {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

func (a *AllowList) stale(s *snapshot) bool {
	return s.refreshed.IsZero() || a.clock.Now().Sub(s.refreshed) > a.opts.TTL
}

// RefreshIfStale reloads the active domains when the last successful refresh
// is older than the TTL. Concurrent callers share one directory read. A
// failed read keeps the current snapshot and is retried on the next call.
func (a *AllowList) RefreshIfStale(ctx context.Context) error {
	if !a.stale(a.snap.Load()) {
		return nil
	}
	return a.do(ctx, false)
}

// Refresh reads the directory now, sharing the read with concurrent refreshes.
func (a *AllowList) Refresh(ctx context.Context) error {
	return a.do(ctx, true)
}

func (a *AllowList) do(ctx context.Context, force bool) error {
	_, err, _ := a.group.Do("refresh", func() (interface{}, error) {
		current := a.snap.Load()
		if !force && !a.stale(current) {
			return nil, nil
		}
		return nil, a.refresh(ctx, current)
	})
	return err
}

func (a *AllowList) refresh(ctx context.Context, current *snapshot) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
	defer cancel()
	generation := a.generation.Load()

	domains, err := a.dir.ListActiveDomains(ctx)
	if err != nil {
		a.metrics.RecordRefresh(false, 0)
		log.Ctx(ctx).Error().Err(err).Msg("could not refresh allow-list from tenant directory")
		return err
	}

	next := &snapshot{
		hosts:     make(map[string]struct{}, len(current.hosts)+len(domains)),
		suffixes:  current.suffixes,
		wildcard:  current.wildcard,
		origins:   make(map[string]struct{}, len(current.origins)+len(domains)*(len(a.opts.DevPorts)+1)),
		refreshed: a.clock.Now(),
	}
	for h := range current.hosts {
		next.hosts[h] = struct{}{}
	}
	for o := range current.origins {
		next.origins[o] = struct{}{}
	}
	for _, d := range domains {
		d = Normalize(d)
		if d == "" {
			continue
		}
		next.hosts[d] = struct{}{}
		for _, o := range a.OriginsFor(d) {
			next.origins[o] = struct{}{}
		}
	}
	if a.generation.Load() != generation {
		next.refreshed = time.Time{}
	}
	a.snap.Store(next)

	entries := len(next.hosts) + len(next.origins)
	a.metrics.RecordRefresh(true, entries)
	log.Ctx(ctx).Debug().Int("domains", len(domains)).Int("entries", entries).Msg("allow-list refreshed")
	return nil
}

// Invalidate marks the list stale so the next RefreshIfStale reads the
// directory, used after a tenant or domain is created.
func (a *AllowList) Invalidate() {
	a.generation.Add(1)
	for {
		current := a.snap.Load()
		if current.refreshed.IsZero() {
			return
		}
		next := *current
		next.refreshed = time.Time{}
		if a.snap.CompareAndSwap(current, &next) {
			return
		}
	}
}

// Run refreshes the list every TTL until ctx is done.
func (a *AllowList) Run(ctx context.Context) {
	ticker := a.clock.Ticker(a.opts.TTL)
	defer ticker.Stop()
	_ = a.RefreshIfStale(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = a.Refresh(ctx)
		}
	}
}
