package health

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/meenabazaar/order-management/internal/core/ports"
	"github.com/meenabazaar/order-management/internal/infrastructure/mongodb"
)

// mongoHealthChecker wraps the database for health checks.
type mongoHealthChecker struct{ db *mongodb.Database }

func (m *mongoHealthChecker) Name() string                    { return "mongodb" }
func (m *mongoHealthChecker) Check(ctx context.Context) error { return m.db.Ping(ctx) }

// redisHealthChecker wraps the redis client for health checks.
type redisHealthChecker struct{ client *redis.Client }

func (r *redisHealthChecker) Name() string                    { return "redis" }
func (r *redisHealthChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// NewMongoHealthChecker creates a health checker for MongoDB.
func NewMongoHealthChecker(db *mongodb.Database) ports.HealthChecker {
	return &mongoHealthChecker{db: db}
}

// NewRedisHealthChecker creates a health checker for Redis.
func NewRedisHealthChecker(client *redis.Client) ports.HealthChecker {
	return &redisHealthChecker{client: client}
}
