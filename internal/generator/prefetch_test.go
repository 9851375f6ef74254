package generator

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"trivia-arena-service/internal/domain"
)

type countingSource struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSource) Generate(_ context.Context, topic string) domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return domain.Question{
		Prompt:      fmt.Sprintf("%s #%d", topic, s.calls),
		Choices:     []string{"A", "B"},
		AnswerIndex: 0,
	}
}

func (s *countingSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestPrefetcherWarmsNextQuestion(t *testing.T) {
	source := &countingSource{}
	prefetcher := NewPrefetcher(context.Background(), source)

	first := prefetcher.Generate(context.Background(), "science")
	if first.Prompt != "science #1" {
		t.Fatalf("unexpected first question %+v", first)
	}

	// A spare question is generated in the background.
	waitForWarm(t, prefetcher, "science")

	second := prefetcher.Generate(context.Background(), "science")
	if second.Prompt != "science #2" {
		t.Fatalf("expected warmed question, got %+v", second)
	}
}

func TestPrefetcherKeepsTopicsSeparate(t *testing.T) {
	source := &countingSource{}
	prefetcher := NewPrefetcher(context.Background(), source)

	_ = prefetcher.Generate(context.Background(), "science")
	waitForWarm(t, prefetcher, "science")

	q := prefetcher.Generate(context.Background(), "history")
	if q.Prompt != "history #3" {
		t.Fatalf("expected fresh generation for a new topic, got %+v", q)
	}
	if source.callCount() < 3 {
		t.Fatalf("expected a new topic to generate, have %d calls", source.callCount())
	}
}

func waitForWarm(t *testing.T, p *Prefetcher, topic string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		p.mu.Lock()
		_, ok := p.ready[topic]
		p.mu.Unlock()
		if ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for warmed question for %q", topic)
}
