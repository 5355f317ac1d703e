package model

import "time"

type ProgressStatus string

const (
	ProgressStatusRegistered ProgressStatus = "registered"
	ProgressStatusInProgress ProgressStatus = "in_progress"
	ProgressStatusCompleted  ProgressStatus = "completed"
)

type AnswerResult string

const (
	AnswerCorrect   AnswerResult = "correct"
	AnswerIncorrect AnswerResult = "incorrect"
)

// PlayerProgress tracks a single player within a single hunt. It is
// created exactly once per (hunt, player) pair and becomes immutable
// once Status reaches Completed.
type PlayerProgress struct {
	HuntID        int64
	PlayerID      int64
	WalletAddress string
	SolvedClues   []int64
	Score         int
	Status        ProgressStatus
	RegisteredAt  time.Time
	CompletedAt   *time.Time
}

func (p *PlayerProgress) HasSolved(clueID int64) bool {
	for _, id := range p.SolvedClues {
		if id == clueID {
			return true
		}
	}
	return false
}

// HasSolvedRequired reports whether every required clue of the hunt is
// in the solved set.
func (p *PlayerProgress) HasSolvedRequired(clues []*Clue) bool {
	for _, clue := range clues {
		if clue.Required && !p.HasSolved(clue.ClueID) {
			return false
		}
	}
	return true
}
