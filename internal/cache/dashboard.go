// internal/cache/dashboard.go
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/config"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/domain"
)

const (
	dashboardKeyPrefix  = "dashboard:customers"
	scanBatchSize       = 100
	defaultDashboardTTL = time.Minute
)

// Snapshot is the cached dashboard payload for one processed upload.
type Snapshot struct {
	Customers     []domain.CustomerAggregate `json:"customers"`
	OrderCount    int                        `json:"order_count"`
	DroppedOrders int                        `json:"dropped_orders"`
	ProcessedAt   time.Time                  `json:"processed_at"`
}

type DashboardCache interface {
	GetSnapshot(ctx context.Context, uploadDigest string) (*Snapshot, bool, error)
	SetSnapshot(ctx context.Context, uploadDigest string, snap *Snapshot) error
	InvalidateAll(ctx context.Context) error
}

type redisDashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopDashboardCache struct{}

func NewDashboardCache(cfg config.CacheConfig) (DashboardCache, error) {
	if !cfg.Enabled {
		return &noopDashboardCache{}, nil
	}

	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.DashboardTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultDashboardTTL
	}

	return &redisDashboardCache{client: client, ttl: ttl}, nil
}

func NewNoopDashboardCache() DashboardCache {
	return &noopDashboardCache{}
}

func (c *redisDashboardCache) GetSnapshot(ctx context.Context, uploadDigest string) (*Snapshot, bool, error) {
	payload, err := c.client.Get(ctx, snapshotKey(uploadDigest)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, false, fmt.Errorf("decode dashboard snapshot cache: %w", err)
	}
	return &snap, true, nil
}

func (c *redisDashboardCache) SetSnapshot(ctx context.Context, uploadDigest string, snap *Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode dashboard snapshot cache: %w", err)
	}
	if err := c.client.Set(ctx, snapshotKey(uploadDigest), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisDashboardCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, dashboardKeyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return nil
}

func (n *noopDashboardCache) GetSnapshot(ctx context.Context, uploadDigest string) (*Snapshot, bool, error) {
	return nil, false, nil
}

func (n *noopDashboardCache) SetSnapshot(ctx context.Context, uploadDigest string, snap *Snapshot) error {
	return nil
}

func (n *noopDashboardCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}

	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func snapshotKey(uploadDigest string) string {
	hash := sha1.Sum([]byte(uploadDigest))
	return fmt.Sprintf("%s:%s", dashboardKeyPrefix, hex.EncodeToString(hash[:]))
}
