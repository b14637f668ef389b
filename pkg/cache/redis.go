package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chalanpro/tenant-gateway/pkg/models"
	"github.com/redis/go-redis/v9"
)

const tenantKeyPrefix = "tenant-by-domain:"

type redisCache struct {
	client     *redis.Client
	expiration time.Duration
}

func NewRedisCache(client *redis.Client, expiration time.Duration) *redisCache {
	return &redisCache{
		client:     client,
		expiration: expiration,
	}
}

func tenantKey(domain string) string {
	return tenantKeyPrefix + domain
}

// cachedTenant is the cached form of a tenant, it leaves out the loaded domains.
type cachedTenant struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	SchemaName  string    `json:"schema_name"`
	TenantID    string    `json:"tenant_id"`
	ClientType  string    `json:"client_type"`
	Preferences []string  `json:"preferences"`
	OnTrial     bool      `json:"on_trial"`
	IsActive    bool      `json:"is_active"`
	CreatedOn   time.Time `json:"created_on"`
}

func toCached(t models.Tenant) cachedTenant {
	return cachedTenant{
		ID:          t.ID,
		Name:        t.Name,
		SchemaName:  t.SchemaName,
		TenantID:    t.TenantID,
		ClientType:  t.ClientType,
		Preferences: t.Preferences,
		OnTrial:     t.OnTrial,
		IsActive:    t.IsActive,
		CreatedOn:   t.CreatedOn,
	}
}

func (c cachedTenant) toModel() *models.Tenant {
	return &models.Tenant{
		Base:        models.Base{ID: c.ID, CreatedOn: c.CreatedOn},
		Name:        c.Name,
		SchemaName:  c.SchemaName,
		TenantID:    c.TenantID,
		ClientType:  c.ClientType,
		Preferences: c.Preferences,
		OnTrial:     c.OnTrial,
		IsActive:    c.IsActive,
	}
}

// GetTenant returns the tenant cached for an exact domain, NotFound on a miss
func (c *redisCache) GetTenant(ctx context.Context, domain string) (*models.Tenant, error) {
	buf, err := c.get(ctx, tenantKey(domain))
	if err != nil {
		return nil, fmt.Errorf("redis get error: %w", err)
	}

	var cached cachedTenant
	err = json.Unmarshal(buf, &cached)
	if err != nil {
		return nil, fmt.Errorf("redis unmarshal error: %w", err)
	}
	return cached.toModel(), nil
}

func (c *redisCache) SetTenant(ctx context.Context, domain string, tenant models.Tenant) error {
	buf, err := json.Marshal(toCached(tenant))
	if err != nil {
		return fmt.Errorf("unable to marshal for Redis cache: %w", err)
	}

	if err := c.client.Set(ctx, tenantKey(domain), string(buf), c.expiration).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

func (c *redisCache) DeleteTenant(ctx context.Context, domains ...string) error {
	if len(domains) == 0 {
		return nil
	}
	keys := make([]string, len(domains))
	for i, d := range domains {
		keys[i] = tenantKey(d)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del error: %w", err)
	}
	return nil
}

func (c *redisCache) get(ctx context.Context, key string) ([]byte, error) {
	cmd := c.client.Get(ctx, key)
	if errors.Is(cmd.Err(), redis.Nil) {
		return nil, NotFound
	} else if cmd.Err() != nil {
		return nil, fmt.Errorf("redis error: %w", cmd.Err())
	}

	buf, err := cmd.Bytes()
	if err != nil {
		return nil, fmt.Errorf("redis bytes conversion error: %w", err)
	}
	return buf, err
}
