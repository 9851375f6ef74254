package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-arena-service/internal/domain"
)

// QuestionBank serves curated questions stored as JSONB in Postgres. It is
// the second fallback tier when live generation fails.
type QuestionBank struct {
	pool *pgxpool.Pool
}

func NewQuestionBank(pool *pgxpool.Pool) *QuestionBank {
	return &QuestionBank{pool: pool}
}

func (b *QuestionBank) RandomQuestion(ctx context.Context, topic string) (domain.Question, error) {
	var raw []byte
	err := b.pool.QueryRow(ctx,
		`SELECT data FROM questions WHERE topic=$1 ORDER BY random() LIMIT 1`, topic).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrNoQuestion
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("load question: %w", err)
	}

	var q domain.Question
	if err := json.Unmarshal(raw, &q); err != nil {
		return domain.Question{}, fmt.Errorf("unmarshal question: %w", err)
	}
	return q, nil
}
