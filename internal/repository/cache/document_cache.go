package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-notetaking-session/internal/entity"
	"ai-notetaking-session/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const documentTTL = 5 * time.Minute

// DocumentCache is a redis read-through cache for document reads. Every
// method tolerates a nil client or an unreachable redis: the store must keep
// serving from Postgres when the cache is down.
type DocumentCache struct {
	rdb *redis.Client
	log logger.ILogger
}

func NewDocumentCache(rdb *redis.Client, log logger.ILogger) *DocumentCache {
	return &DocumentCache{rdb: rdb, log: log}
}

func documentKey(id uuid.UUID) string {
	return fmt.Sprintf("document:%s", id)
}

func (c *DocumentCache) Get(ctx context.Context, id uuid.UUID) *entity.Document {
	if c == nil || c.rdb == nil {
		return nil
	}

	raw, err := c.rdb.Get(ctx, documentKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("cache", "document cache read failed", map[string]interface{}{
				"document_id": id.String(),
				"error":       err.Error(),
			})
		}
		return nil
	}

	var doc entity.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	return &doc
}

func (c *DocumentCache) Set(ctx context.Context, doc *entity.Document) {
	if c == nil || c.rdb == nil || doc == nil {
		return
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, documentKey(doc.Id), raw, documentTTL).Err(); err != nil {
		c.log.Warn("cache", "document cache write failed", map[string]interface{}{
			"document_id": doc.Id.String(),
			"error":       err.Error(),
		})
	}
}

func (c *DocumentCache) Invalidate(ctx context.Context, id uuid.UUID) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, documentKey(id)).Err(); err != nil {
		c.log.Warn("cache", "document cache invalidation failed", map[string]interface{}{
			"document_id": id.String(),
			"error":       err.Error(),
		})
	}
}
