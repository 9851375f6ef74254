package generator

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"trivia-arena-service/internal/domain"
)

// Source is anything that produces a question for a topic without failing.
type Source interface {
	Generate(ctx context.Context, topic string) domain.Question
}

// Prefetcher wraps a Source and keeps one question per topic warmed in the
// background, so the pause between rounds is not stretched by generation
// latency. Concurrent generation for the same topic is collapsed through
// singleflight.
type Prefetcher struct {
	source Source
	sf     singleflight.Group

	// ctx bounds background warm-up work to the server lifetime.
	ctx context.Context

	mu    sync.Mutex
	ready map[string]domain.Question
}

func NewPrefetcher(ctx context.Context, source Source) *Prefetcher {
	return &Prefetcher{
		source: source,
		ctx:    ctx,
		ready:  make(map[string]domain.Question),
	}
}

// Generate serves the warmed question for the topic when one is waiting,
// otherwise generates synchronously. Either way it kicks off a background
// warm-up for the next call.
func (p *Prefetcher) Generate(ctx context.Context, topic string) domain.Question {
	p.mu.Lock()
	q, ok := p.ready[topic]
	if ok {
		delete(p.ready, topic)
	}
	p.mu.Unlock()

	if !ok {
		v, _, _ := p.sf.Do(topic, func() (interface{}, error) {
			return p.source.Generate(ctx, topic), nil
		})
		q = v.(domain.Question)
	}

	go p.warm(topic)
	return q
}

// warm generates one spare question for the topic unless one is already
// waiting.
func (p *Prefetcher) warm(topic string) {
	p.mu.Lock()
	_, waiting := p.ready[topic]
	p.mu.Unlock()
	if waiting {
		return
	}

	v, _, _ := p.sf.Do("warm:"+topic, func() (interface{}, error) {
		return p.source.Generate(p.ctx, topic), nil
	})

	p.mu.Lock()
	if _, waiting := p.ready[topic]; !waiting {
		p.ready[topic] = v.(domain.Question)
	}
	p.mu.Unlock()
}
