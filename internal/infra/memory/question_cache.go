package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"trivia-arena-service/internal/domain"
)

// QuestionCache keeps a bounded pool of recently generated questions per
// topic. The generator records into it on success and reads from it when the
// text-generation service is down, so players usually see real content
// instead of the static last-resort question.
type QuestionCache struct {
	size int

	mu     sync.Mutex
	rnd    *rand.Rand
	recent map[string][]domain.Question
}

func NewQuestionCache(size int) *QuestionCache {
	if size <= 0 {
		size = 16
	}
	return &QuestionCache{
		size:   size,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		recent: make(map[string][]domain.Question),
	}
}

func (c *QuestionCache) RecordQuestion(_ context.Context, topic string, q domain.Question) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	pool := append(c.recent[topic], q)
	if len(pool) > c.size {
		pool = pool[len(pool)-c.size:]
	}
	c.recent[topic] = pool
	return nil
}

func (c *QuestionCache) RandomQuestion(_ context.Context, topic string) (domain.Question, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pool := c.recent[topic]
	if len(pool) == 0 {
		return domain.Question{}, domain.ErrNoQuestion
	}
	return pool[c.rnd.Intn(len(pool))], nil
}
