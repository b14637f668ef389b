// Package cache provides the tenant lookup cache shared by gateway replicas.
package cache

import (
	"context"
	"errors"

	"github.com/chalanpro/tenant-gateway/pkg/config"
	"github.com/chalanpro/tenant-gateway/pkg/models"
	"github.com/redis/go-redis/v9"
)

var NotFound = errors.New("not found in cache")

type Cache interface {
	GetTenant(ctx context.Context, domain string) (*models.Tenant, error)
	SetTenant(ctx context.Context, domain string, tenant models.Tenant) error
	DeleteTenant(ctx context.Context, domains ...string) error
}

// NewRedisClient connects with the clients.redis settings. Used by the
// tenant cache and the notification broker.
func NewRedisClient() *redis.Client {
	c := config.Get()
	return redis.NewClient(&redis.Options{
		Addr:     config.RedisUrl(),
		Username: c.Clients.Redis.Username,
		Password: c.Clients.Redis.Password,
		DB:       c.Clients.Redis.DB,
	})
}
