package app

import (
	"sync"

	"github.com/google/uuid"

	"trivia-arena-service/internal/domain"
)

// DefaultTopic seeds question generation until a client picks a genre.
const DefaultTopic = "general knowledge"

// waitingPrompt is shown before the first round has a question.
const waitingPrompt = "Waiting..."

// Conn is the outbound half of a participant's connection. Send must not
// block on a slow client; it returns an error once the connection is gone.
type Conn interface {
	Send(view domain.StateView) error
}

type phase int

const (
	phaseIdle phase = iota
	phaseActive
	phaseRevealing
)

type participant struct {
	domain.Participant
	conn Conn
}

// Game is the shared mutable store for one trivia room: connected
// participants, the active question, this round's answers, and the topic.
// Every field is guarded by mu; methods suffixed Locked assume the caller
// holds it. Flow decisions live in Coordinator, not here.
type Game struct {
	mu sync.Mutex

	participants map[string]*participant
	question     *domain.Question
	answers      map[string]int
	topic        string

	phase         phase
	roundStarting bool
}

func NewGame() *Game {
	return &Game{
		participants: make(map[string]*participant),
		answers:      make(map[string]int),
		topic:        DefaultTopic,
	}
}

func (g *Game) addParticipantLocked(name string, conn Conn) *participant {
	p := &participant{
		Participant: domain.Participant{
			ID:   uuid.NewString(),
			Name: name,
		},
		conn: conn,
	}
	g.participants[p.ID] = p
	return p
}

// removeParticipantLocked is idempotent and also drops any pending answer so
// the all-answered count never includes departed players.
func (g *Game) removeParticipantLocked(id string) {
	delete(g.participants, id)
	delete(g.answers, id)
}

// recordAnswerLocked stores the submission and reports whether it counted.
// It does not range-check index: an out-of-range answer simply never matches
// the correct one.
func (g *Game) recordAnswerLocked(id string, index int) bool {
	if g.question == nil {
		return false
	}
	if _, ok := g.participants[id]; !ok {
		return false
	}
	if _, ok := g.answers[id]; ok {
		return false
	}
	g.answers[id] = index
	return true
}

// installQuestionLocked swaps in the next question and clears the answer map
// in the same critical section, so no answer leaks into the new round.
func (g *Game) installQuestionLocked(q domain.Question) {
	g.question = &q
	g.answers = make(map[string]int)
}

// allAnsweredLocked is the round-completion condition. Zero participants
// never complete a round (0 == 0 means "no active players", not "done").
func (g *Game) allAnsweredLocked() bool {
	n := len(g.participants)
	return n > 0 && len(g.answers) >= n
}

// snapshotLocked renders the individualized client view for forID. The
// correct-answer index is never included. When reveal is set, hasAnswered is
// forced false for everyone, which tells clients the round just closed.
func (g *Game) snapshotLocked(forID string, reveal bool) domain.StateView {
	players := make(map[string]domain.PlayerView, len(g.participants))
	for id, p := range g.participants {
		players[id] = domain.PlayerView{Name: p.Name, Score: p.Score}
	}

	question := domain.QuestionView{Prompt: waitingPrompt, Choices: []string{}}
	if g.question != nil {
		question = domain.QuestionView{Prompt: g.question.Prompt, Choices: g.question.Choices}
	}

	hasAnswered := false
	if !reveal {
		_, hasAnswered = g.answers[forID]
	}

	return domain.StateView{
		Players:     players,
		Question:    question,
		HasAnswered: hasAnswered,
	}
}
