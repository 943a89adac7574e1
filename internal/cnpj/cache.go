package cnpj

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "cnpj:"

// Cache guarda consultas bem-sucedidas no Redis. Um *Cache nil nunca encontra
// nada e aceita Set sem efeito.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if rdb == nil {
		return nil
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, digits string) (*Info, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, cacheKeyPrefix+digits).Bytes()
	if err != nil {
		return nil, false
	}
	var info Info
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, false
	}
	return &info, true
}

func (c *Cache) Set(ctx context.Context, digits string, info *Info) error {
	if c == nil || info == nil {
		return nil
	}
	raw, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKeyPrefix+digits, raw, c.ttl).Err()
}
