package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/chalanpro/tenant-gateway/pkg/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RedisCacheSuite struct {
	suite.Suite
	mr    *miniredis.Miniredis
	cache *redisCache
}

func TestRedisCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupTest() {
	s.mr = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.T().Cleanup(func() { client.Close() })
	s.cache = NewRedisCache(client, time.Minute)
}

func (s *RedisCacheSuite) TestMiss() {
	_, err := s.cache.GetTenant(context.Background(), "phoenix.example.com")
	assert.ErrorIs(s.T(), err, NotFound)
}

func (s *RedisCacheSuite) TestSetGet() {
	t := s.T()
	ctx := context.Background()
	tenant := models.Tenant{
		Base:        models.Base{ID: 7},
		Name:        "Phoenix",
		SchemaName:  "phoenix",
		TenantID:    "phoenix_001",
		ClientType:  "electric",
		Preferences: []string{"schedule"},
		IsActive:    true,
		Domains:     []models.Domain{{Domain: "phoenix.example.com"}},
	}

	require.NoError(t, s.cache.SetTenant(ctx, "phoenix.example.com", tenant))
	assert.True(t, s.mr.Exists(tenantKey("phoenix.example.com")))

	found, err := s.cache.GetTenant(ctx, "phoenix.example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(7), found.ID)
	assert.Equal(t, "phoenix", found.SchemaName)
	assert.True(t, found.IsActive)
	assert.Equal(t, []string{"schedule"}, []string(found.Preferences))
	assert.Empty(t, found.Domains)
}

func (s *RedisCacheSuite) TestExpiration() {
	t := s.T()
	ctx := context.Background()
	require.NoError(t, s.cache.SetTenant(ctx, "phoenix.example.com", models.Tenant{SchemaName: "phoenix"}))

	s.mr.FastForward(2 * time.Minute)
	_, err := s.cache.GetTenant(ctx, "phoenix.example.com")
	assert.ErrorIs(t, err, NotFound)
}

func (s *RedisCacheSuite) TestDelete() {
	t := s.T()
	ctx := context.Background()
	require.NoError(t, s.cache.SetTenant(ctx, "a.example.com", models.Tenant{SchemaName: "a"}))
	require.NoError(t, s.cache.SetTenant(ctx, "b.example.com", models.Tenant{SchemaName: "b"}))

	require.NoError(t, s.cache.DeleteTenant(ctx, "a.example.com", "b.example.com"))
	assert.False(t, s.mr.Exists(tenantKey("a.example.com")))
	assert.False(t, s.mr.Exists(tenantKey("b.example.com")))
	assert.NoError(t, s.cache.DeleteTenant(ctx))
}

func (s *RedisCacheSuite) TestUnavailable() {
	s.mr.Close()
	_, err := s.cache.GetTenant(context.Background(), "phoenix.example.com")
	assert.Error(s.T(), err)
	assert.NotErrorIs(s.T(), err, NotFound)
}

func TestNoOpCache(t *testing.T) {
	c := NewNoOpCache()
	_, err := c.GetTenant(context.Background(), "phoenix.example.com")
	assert.ErrorIs(t, err, NotFound)
	assert.NoError(t, c.SetTenant(context.Background(), "phoenix.example.com", models.Tenant{}))
	assert.NoError(t, c.DeleteTenant(context.Background(), "phoenix.example.com"))
}
