package reports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"bank-ledger/models"
)

const summaryKey = "reports:customer_summary"

// Cache keeps the customer summary in redis between writes. It is an
// optimization only: a nil *Cache (or any redis failure) falls back to
// recomputing from the store.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(addr, password string, ttl time.Duration) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       0,
		}),
		ttl: ttl,
	}
}

func (c *Cache) GetSummary(ctx context.Context) ([]models.CustomerSummaryRow, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, summaryKey).Result()
	if err != nil {
		return nil, false
	}
	var rows []models.CustomerSummaryRow
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, false
	}
	return rows, true
}

func (c *Cache) SetSummary(ctx context.Context, rows []models.CustomerSummaryRow) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, summaryKey, raw, c.ttl).Err()
}

// Invalidate drops the cached summary. Called after every successful append
// and after any administrative write.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	_ = c.client.Del(ctx, summaryKey).Err()
}
