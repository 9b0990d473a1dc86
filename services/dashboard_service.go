package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dashboardCacheTTL     = 5 * time.Minute
	dashboardCacheTimeout = 2 * time.Second
)

// DashboardCache holds pre-computed chat dashboard summaries keyed per user.
// All operations are best-effort: a cache failure is logged and ignored, the
// dashboard is rebuilt from the database instead.
type DashboardCache interface {
	Get(userID uint, out interface{}) bool
	Set(userID uint, value interface{})
	Invalidate(userID uint)
}

type redisDashboardCache struct {
	client *redis.Client
}

// NewDashboardCache wraps a Redis client; a nil client yields a no-op cache.
func NewDashboardCache(client *redis.Client) DashboardCache {
	if client == nil {
		return noopDashboardCache{}
	}
	return &redisDashboardCache{client: client}
}

func dashboardKey(userID uint) string {
	return fmt.Sprintf("chat_dashboard_%d", userID)
}

func (c *redisDashboardCache) Get(userID uint, out interface{}) bool {
	ctx, cancel := context.WithTimeout(context.Background(), dashboardCacheTimeout)
	defer cancel()
	raw, err := c.client.Get(ctx, dashboardKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("dashboard cache get failed for user %d: %v", userID, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Printf("dashboard cache decode failed for user %d: %v", userID, err)
		return false
	}
	return true
}

func (c *redisDashboardCache) Set(userID uint, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("dashboard cache encode failed for user %d: %v", userID, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), dashboardCacheTimeout)
	defer cancel()
	if err := c.client.Set(ctx, dashboardKey(userID), raw, dashboardCacheTTL).Err(); err != nil {
		log.Printf("dashboard cache set failed for user %d: %v", userID, err)
	}
}

func (c *redisDashboardCache) Invalidate(userID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), dashboardCacheTimeout)
	defer cancel()
	if err := c.client.Del(ctx, dashboardKey(userID)).Err(); err != nil {
		log.Printf("dashboard cache invalidation failed for user %d: %v", userID, err)
	}
}

type noopDashboardCache struct{}

func (noopDashboardCache) Get(uint, interface{}) bool { return false }
func (noopDashboardCache) Set(uint, interface{})      {}
func (noopDashboardCache) Invalidate(uint)            {}
