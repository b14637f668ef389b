// Package schema binds a tenant's postgres schema to a pooled connection for
// the duration of a request, or per database call for streaming connections.
package schema

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/chalanpro/tenant-gateway/pkg/models"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const DefaultPublicSchema = "public"

const resetTimeout = 5 * time.Second

var (
	ErrBind    = errors.New("could not bind tenant schema")
	ErrRelease = errors.New("could not reset schema")
)

// Router scopes search_path to one tenant schema on a connection taken from
// the pool. The connection is reset to the public schema before it goes
// back to the pool, whatever way the body returns.
type Router struct {
	db     *gorm.DB
	public string
}

func NewRouter(db *gorm.DB, publicSchema string) *Router {
	if publicSchema == "" {
		publicSchema = DefaultPublicSchema
	}
	return &Router{db: db, public: publicSchema}
}

// SchemaFor returns the schema a tenant is served from, the public schema for nil.
func (r *Router) SchemaFor(tenant *models.Tenant) string {
	if tenant == nil || tenant.SchemaName == "" {
		return r.public
	}
	return tenant.SchemaName
}

func (r *Router) searchPath(schema string) string {
	if schema == r.public {
		return "SET search_path TO " + pq.QuoteIdentifier(r.public)
	}
	return fmt.Sprintf("SET search_path TO %s, %s", pq.QuoteIdentifier(schema), pq.QuoteIdentifier(r.public))
}

// WithTenantContext runs body with a gorm session pinned to a connection
// whose search_path is the tenant schema. Use DB(ctx) inside body to reach
// it. A failed reset discards the connection instead of returning it to
// the pool.
func (r *Router) WithTenantContext(ctx context.Context, tenant *models.Tenant, body func(ctx context.Context) error) (err error) {
	schema := r.SchemaFor(tenant)
	logger := log.Ctx(ctx).With().Str("schema", schema).Logger()

	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrBind, schema, err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrBind, schema, err)
	}
	if _, err = conn.ExecContext(ctx, r.searchPath(schema)); err != nil {
		logger.Error().Err(err).Msg("could not set search_path")
		discard(conn)
		return fmt.Errorf("%w %s: %w", ErrBind, schema, err)
	}

	defer func() {
		if resetErr := r.release(ctx, conn); resetErr != nil {
			logger.Error().Err(resetErr).Msg("could not reset search_path, discarding connection")
			err = errors.Join(err, fmt.Errorf("%w: %w", ErrRelease, resetErr))
		}
	}()

	session := r.db.Session(&gorm.Session{NewDB: true, Context: ctx})
	session.Statement.ConnPool = conn
	return body(withSession(ctx, session, schema))
}

// release runs even when ctx is done, otherwise a canceled request would
// hand a connection with the tenant search_path back to the pool.
func (r *Router) release(ctx context.Context, conn *sql.Conn) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resetTimeout)
	defer cancel()
	if _, err := conn.ExecContext(ctx, r.searchPath(r.public)); err != nil {
		discard(conn)
		return err
	}
	return conn.Close()
}

func discard(conn *sql.Conn) {
	_ = conn.Raw(func(any) error { return driver.ErrBadConn })
	_ = conn.Close()
}

// Scope fixes tenant in ctx without taking a connection from the pool.
// Streaming connections live as long as the client wants, so they must not
// hold a pinned connection; database work under the returned ctx goes
// through Run, which binds the schema per call.
func (r *Router) Scope(ctx context.Context, tenant *models.Tenant) context.Context {
	return context.WithValue(ctx, sessionKey{}, session{router: r, tenant: tenant, schema: r.SchemaFor(tenant)})
}

// Run calls fn with a schema bound session. Inside WithTenantContext it is
// the pinned session. Under a Scope a connection is bound for the duration
// of fn and reset afterwards.
func Run(ctx context.Context, fn func(db *gorm.DB) error) error {
	s, ok := ctx.Value(sessionKey{}).(session)
	if !ok {
		return fmt.Errorf("%w: no tenant scope in context", ErrBind)
	}
	if s.db != nil {
		return fn(s.db.WithContext(ctx))
	}
	return s.router.WithTenantContext(ctx, s.tenant, func(bound context.Context) error {
		return fn(DB(bound))
	})
}

type sessionKey struct{}

// session is either pinned (db set) or a lazy scope (router set).
type session struct {
	db     *gorm.DB
	router *Router
	tenant *models.Tenant
	schema string
}

func withSession(ctx context.Context, db *gorm.DB, schema string) context.Context {
	return context.WithValue(ctx, sessionKey{}, session{db: db, schema: schema})
}

// DB returns the schema bound session of ctx, nil outside WithTenantContext.
// Under a Scope it is nil too; use Run.
func DB(ctx context.Context) *gorm.DB {
	s, ok := ctx.Value(sessionKey{}).(session)
	if !ok || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx)
}

// Current returns the schema bound or scoped in ctx, "" outside both.
func Current(ctx context.Context) string {
	s, _ := ctx.Value(sessionKey{}).(session)
	return s.schema
}
