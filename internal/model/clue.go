package model

// Clue holds a question and the commitment of its answer. The plaintext
// answer is never stored; equality against the commitment is the only
// operation ever performed on it.
type Clue struct {
	HuntID           int64
	ClueID           int64
	Question         string
	AnswerCommitment string
	Required         bool
	Points           int
	Hint             string
	Location         *Location
}

// Location is an optional geo anchor for a clue.
// Coordinates are degrees * 1_000_000.
type Location struct {
	Latitude  int64
	Longitude int64
	RadiusM   int
}
