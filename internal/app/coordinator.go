package app

import (
	"context"
	"time"

	"trivia-arena-service/internal/domain"
)

// QuestionSource produces the next question for a topic. Implementations
// never fail; they fall back to stock content instead (see internal/generator).
type QuestionSource interface {
	Generate(ctx context.Context, topic string) domain.Question
}

// Coordinator drives the round lifecycle: generate, broadcast, collect
// answers, score, pause, advance. It owns the serialization discipline over
// Game; every public method acquires the game lock, and question generation
// always runs outside it so joins and answers are never blocked behind a slow
// generation call.
type Coordinator struct {
	game   *Game
	source QuestionSource
	hub    *Hub
	pause  time.Duration

	// ctx bounds background round-start jobs to the server lifetime.
	ctx context.Context
}

func NewCoordinator(ctx context.Context, game *Game, source QuestionSource, pause time.Duration) *Coordinator {
	return &Coordinator{
		game:   game,
		source: source,
		hub:    NewHub(),
		pause:  pause,
		ctx:    ctx,
	}
}

// Join registers a participant and immediately sends them their own snapshot.
// The first join while no question is active kicks off the first round; the
// roundStarting flag guarantees at most one such job is ever in flight.
func (c *Coordinator) Join(name string, conn Conn) domain.Participant {
	g := c.game
	g.mu.Lock()
	p := g.addParticipantLocked(name, conn)
	_ = conn.Send(g.snapshotLocked(p.ID, false))
	start := g.phase == phaseIdle && !g.roundStarting
	if start {
		g.roundStarting = true
	}
	g.mu.Unlock()

	if start {
		go c.startRound()
	}
	return p.Participant
}

// SubmitAnswer records an answer for the current round. Duplicate answers,
// answers with no active question, and answers during the reveal pause are
// all silently ignored. Recording and the completion check happen in one
// critical section, so two concurrent final answers cannot trigger two
// reveals or none.
func (c *Coordinator) SubmitAnswer(id string, index int) {
	g := c.game
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != phaseActive {
		return
	}
	if !g.recordAnswerLocked(id, index) {
		return
	}
	c.hub.broadcastLocked(g, false)
	c.maybeRevealLocked()
}

// SetTopic changes the topic used for the next generated question. It never
// affects the question already on the table.
func (c *Coordinator) SetTopic(topic string) {
	if topic == "" {
		return
	}
	c.game.mu.Lock()
	c.game.topic = topic
	c.game.mu.Unlock()
}

// Leave removes a participant and their pending answer, then re-evaluates
// round completion: the departed player may have been the only one holding
// the round open.
func (c *Coordinator) Leave(id string) {
	g := c.game
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.participants[id]; !ok {
		return
	}
	g.removeParticipantLocked(id)
	c.hub.broadcastLocked(g, false)
	if g.phase == phaseActive {
		c.maybeRevealLocked()
	}
}

// maybeRevealLocked scores and announces the round once every connected
// participant has answered. The phase transition happens in the same critical
// section as the check, so the reveal fires exactly once per round.
func (c *Coordinator) maybeRevealLocked() {
	g := c.game
	if g.phase != phaseActive || !g.allAnsweredLocked() {
		return
	}

	correct := g.question.AnswerIndex
	for id, answer := range g.answers {
		if p, ok := g.participants[id]; ok && answer == correct {
			p.Score++
		}
	}
	g.phase = phaseRevealing
	c.hub.broadcastLocked(g, true)
	go c.advance()
}

// advance waits out the reveal pause, then starts the next round. The pause
// is fixed; client activity during it simply waits for the next broadcast.
func (c *Coordinator) advance() {
	select {
	case <-time.After(c.pause):
	case <-c.ctx.Done():
		return
	}
	c.startRound()
}

// startRound generates a question for the current topic outside the lock,
// installs it, and broadcasts the fresh round to everyone.
func (c *Coordinator) startRound() {
	g := c.game
	g.mu.Lock()
	topic := g.topic
	g.mu.Unlock()

	q := c.source.Generate(c.ctx, topic)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.installQuestionLocked(q)
	g.phase = phaseActive
	g.roundStarting = false
	c.hub.broadcastLocked(g, false)
}
