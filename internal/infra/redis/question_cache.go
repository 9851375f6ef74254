package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-arena-service/internal/domain"
)

// QuestionCache keeps recently generated questions per topic in Redis.
// Questions are stored as: LPUSH quiz:questions:{topic} {json}, trimmed to
// size entries and expiring after ttl. It survives process restarts of the
// game server without holding any game state.
type QuestionCache struct {
	client *redis.Client
	size   int64
	ttl    time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionCache(client *redis.Client, size int, ttl time.Duration) *QuestionCache {
	if size <= 0 {
		size = 16
	}
	return &QuestionCache{
		client: client,
		size:   int64(size),
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) RecordQuestion(ctx context.Context, topic string, q domain.Question) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal question: %w", err)
	}

	key := c.key(topic)
	pipe := c.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, c.size-1)
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttlWithJitter())
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache question: %w", err)
	}
	return nil
}

func (c *QuestionCache) RandomQuestion(ctx context.Context, topic string) (domain.Question, error) {
	entries, err := c.client.LRange(ctx, c.key(topic), 0, -1).Result()
	if err != nil {
		return domain.Question{}, fmt.Errorf("load cached questions: %w", err)
	}
	if len(entries) == 0 {
		return domain.Question{}, domain.ErrNoQuestion
	}

	c.mu.Lock()
	pick := c.rnd.Intn(len(entries))
	c.mu.Unlock()

	var q domain.Question
	if err := json.Unmarshal([]byte(entries[pick]), &q); err != nil {
		return domain.Question{}, fmt.Errorf("unmarshal cached question: %w", err)
	}
	return q, nil
}

func (c *QuestionCache) key(topic string) string {
	return "quiz:questions:" + topic
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
