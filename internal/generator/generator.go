package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"time"

	"trivia-arena-service/internal/domain"
)

const (
	systemPrompt = "You are a quiz question generator. Respond ONLY with JSON object containing keys: question, choices (3-6 strings), answer_index (int)."

	// attempts bounds how often we retry the text-generation service before
	// consulting fallback sources.
	attempts = 3
)

// The service may wrap JSON in prose; take the first non-greedy brace match.
var jsonObjectRe = regexp.MustCompile(`\{[\s\S]*?\}`)

// FallbackSource supplies stored questions when live generation fails.
type FallbackSource interface {
	RandomQuestion(ctx context.Context, topic string) (domain.Question, error)
}

// Recorder keeps successfully generated questions for later fallback use.
type Recorder interface {
	RecordQuestion(ctx context.Context, topic string, q domain.Question) error
}

// Generator produces validated questions from a text-generation service.
// Generate never fails: after all attempts and fallback sources are
// exhausted it returns the built-in static question.
type Generator struct {
	client    ChatCompleter
	timeout   time.Duration
	recorder  Recorder
	fallbacks []FallbackSource
}

func NewGenerator(client ChatCompleter, timeout time.Duration) *Generator {
	return &Generator{client: client, timeout: timeout}
}

// UseRecorder registers a sink for successfully generated questions.
func (g *Generator) UseRecorder(r Recorder) {
	g.recorder = r
}

// AddFallback appends a source consulted, in registration order, when all
// generation attempts fail.
func (g *Generator) AddFallback(src FallbackSource) {
	g.fallbacks = append(g.fallbacks, src)
}

// Generate returns a valid question for the topic, always.
func (g *Generator) Generate(ctx context.Context, topic string) domain.Question {
	for attempt := 1; attempt <= attempts; attempt++ {
		q, err := g.attempt(ctx, topic)
		if err != nil {
			log.Printf("question generation attempt %d failed: %v", attempt, err)
			continue
		}
		if g.recorder != nil {
			if err := g.recorder.RecordQuestion(ctx, topic, q); err != nil {
				log.Printf("record question for topic %q: %v", topic, err)
			}
		}
		return q
	}

	for _, src := range g.fallbacks {
		q, err := src.RandomQuestion(ctx, topic)
		if err == nil && q.Valid() {
			log.Printf("generation exhausted, using stored question for topic %q", topic)
			return q
		}
	}

	log.Printf("generation exhausted, using static question")
	return StaticQuestion()
}

func (g *Generator) attempt(ctx context.Context, topic string) (domain.Question, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	content, err := g.client.Complete(attemptCtx, []ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf("Generate one multiple-choice question for genre '%s'.", topic)},
	})
	if err != nil {
		return domain.Question{}, err
	}
	return ParseQuestion(content)
}

// ParseQuestion extracts the first JSON object from free text and validates
// its schema. It is deliberately narrow: one brace match, strict field
// checks, nothing else.
func ParseQuestion(text string) (domain.Question, error) {
	raw := jsonObjectRe.FindString(text)
	if raw == "" {
		return domain.Question{}, fmt.Errorf("%w: no JSON object in response", domain.ErrInvalidQuestion)
	}

	var payload struct {
		Question    string   `json:"question"`
		Choices     []string `json:"choices"`
		AnswerIndex *int     `json:"answer_index"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return domain.Question{}, fmt.Errorf("parse question: %w", err)
	}

	if payload.Question == "" || len(payload.Choices) == 0 || payload.AnswerIndex == nil {
		return domain.Question{}, fmt.Errorf("%w: missing question, choices, or answer_index", domain.ErrInvalidQuestion)
	}
	if *payload.AnswerIndex < 0 || *payload.AnswerIndex >= len(payload.Choices) {
		return domain.Question{}, fmt.Errorf("%w: answer_index %d out of range for %d choices",
			domain.ErrInvalidQuestion, *payload.AnswerIndex, len(payload.Choices))
	}

	return domain.Question{
		Prompt:      payload.Question,
		Choices:     payload.Choices,
		AnswerIndex: *payload.AnswerIndex,
	}, nil
}

// StaticQuestion is the last-resort question served when everything else
// fails. Clients always get a playable round.
func StaticQuestion() domain.Question {
	return domain.Question{
		Prompt:      "Which language runs natively in web browsers?",
		Choices:     []string{"Python", "Java", "JavaScript", "C#"},
		AnswerIndex: 2,
	}
}
