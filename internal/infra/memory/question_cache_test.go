package memory

import (
	"context"
	"fmt"
	"testing"

	"trivia-arena-service/internal/domain"
)

func TestQuestionCacheRoundTrip(t *testing.T) {
	cache := NewQuestionCache(4)
	ctx := context.Background()

	if _, err := cache.RandomQuestion(ctx, "science"); err != domain.ErrNoQuestion {
		t.Fatalf("expected ErrNoQuestion on empty cache, got %v", err)
	}

	q := domain.Question{Prompt: "Q1", Choices: []string{"A", "B"}, AnswerIndex: 0}
	if err := cache.RecordQuestion(ctx, "science", q); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := cache.RandomQuestion(ctx, "science")
	if err != nil {
		t.Fatalf("random: %v", err)
	}
	if got.Prompt != "Q1" {
		t.Fatalf("unexpected question %+v", got)
	}

	// Other topics stay empty.
	if _, err := cache.RandomQuestion(ctx, "history"); err != domain.ErrNoQuestion {
		t.Fatalf("expected topic isolation, got %v", err)
	}
}

func TestQuestionCacheBoundsPoolSize(t *testing.T) {
	cache := NewQuestionCache(2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		q := domain.Question{Prompt: fmt.Sprintf("Q%d", i), Choices: []string{"A", "B"}, AnswerIndex: 0}
		if err := cache.RecordQuestion(ctx, "science", q); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	cache.mu.Lock()
	pool := cache.recent["science"]
	cache.mu.Unlock()
	if len(pool) != 2 {
		t.Fatalf("expected pool trimmed to 2, got %d", len(pool))
	}
	if pool[0].Prompt != "Q3" || pool[1].Prompt != "Q4" {
		t.Fatalf("expected newest entries retained, got %+v", pool)
	}
}
