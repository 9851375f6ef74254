package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"trivia-arena-service/internal/domain"
)

func TestQuestionCacheRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewQuestionCache(client, 4, time.Minute)
	ctx := context.Background()

	if _, err := cache.RandomQuestion(ctx, "science"); err != domain.ErrNoQuestion {
		t.Fatalf("expected ErrNoQuestion on empty cache, got %v", err)
	}

	q := domain.Question{Prompt: "Q1", Choices: []string{"A", "B", "C"}, AnswerIndex: 2}
	if err := cache.RecordQuestion(ctx, "science", q); err != nil {
		t.Fatalf("record: %v", err)
	}
	if !mr.Exists("quiz:questions:science") {
		t.Fatalf("expected redis key to be set")
	}
	if mr.TTL("quiz:questions:science") <= 0 {
		t.Fatalf("expected expiry on cached questions")
	}

	got, err := cache.RandomQuestion(ctx, "science")
	if err != nil {
		t.Fatalf("random: %v", err)
	}
	if got.Prompt != "Q1" || got.AnswerIndex != 2 {
		t.Fatalf("unexpected question %+v", got)
	}
}

func TestQuestionCacheTrimsToSize(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewQuestionCache(client, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		q := domain.Question{Prompt: fmt.Sprintf("Q%d", i), Choices: []string{"A", "B"}, AnswerIndex: 0}
		if err := cache.RecordQuestion(ctx, "science", q); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	entries, err := client.LRange(ctx, "quiz:questions:science", 0, -1).Result()
	if err != nil {
		t.Fatalf("lrange: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected list trimmed to 3, got %d", len(entries))
	}
}
