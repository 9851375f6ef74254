package domain

// Participant represents a connected player and their accumulated score.
type Participant struct {
	ID    string
	Name  string
	Score int
}

// Question is a single multiple-choice question. AnswerIndex addresses
// Choices and is never exposed in client views.
type Question struct {
	Prompt      string   `json:"question"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answer_index"`
}

// Valid reports whether the question is well-formed: a non-empty prompt and
// an answer index inside the choice list.
func (q Question) Valid() bool {
	return q.Prompt != "" && q.AnswerIndex >= 0 && q.AnswerIndex < len(q.Choices)
}

// PlayerView is the client-safe rendering of a participant.
type PlayerView struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// QuestionView is the client-safe rendering of the active question.
// The correct-answer index is deliberately absent.
type QuestionView struct {
	Prompt  string   `json:"question"`
	Choices []string `json:"choices"`
}

// StateView is the individualized snapshot broadcast to one client.
type StateView struct {
	Players     map[string]PlayerView `json:"players"`
	Question    QuestionView          `json:"question"`
	HasAnswered bool                  `json:"hasAnswered"`
}
