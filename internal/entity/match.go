package entity

const (
	BoardRows = 6
	BoardCols = 7

	CellEmpty = 0

	DefaultBestOf = 3
)

const (
	MatchStatusInProgress = "in_progress"
	MatchStatusFinished   = "finished"
)

// Board holds the drop-grid. Cells are CellEmpty, 1 (participant 1) or
// 2 (participant 2).
type Board [BoardRows][BoardCols]int

// Match is one best-of-N game between two co-located players. Players[0] is
// the inviter and moves first in round 1 and every other odd round.
type Match struct {
	ID      string    `json:"id"`
	Players [2]string `json:"players"`
	Board   Board     `json:"board"`
	Turn    string    `json:"turn"`
	Round   int       `json:"round"`
	Wins    [2]int    `json:"wins"`
	BestOf  int       `json:"best_of"`
	Status  string    `json:"status"`
}

// NewMatch - allocates a match on invite acceptance. Pending invites allocate
// nothing, so a fresh match always starts in progress at round 1.
func NewMatch(id, inviterID, accepterID string) *Match {
	match := &Match{
		ID:      id,
		Players: [2]string{inviterID, accepterID},
		BestOf:  DefaultBestOf,
		Status:  MatchStatusInProgress,
	}
	match.StartRound(1)

	return match
}

// RequiredWins - round wins needed to take the match outright.
func (that *Match) RequiredWins() int {
	return that.BestOf/2 + 1
}

func (that *Match) IsInProgress() bool {
	return that.Status == MatchStatusInProgress
}

func (that *Match) IsFinished() bool {
	return that.Status == MatchStatusFinished
}

// IsParticipant - reports whether the connection id is one of the two players.
func (that *Match) IsParticipant(id string) bool {
	return that.Players[0] == id || that.Players[1] == id
}

// Mark - returns the board mark (1 or 2) for a participant, 0 for outsiders.
func (that *Match) Mark(id string) int {
	switch id {
	case that.Players[0]:
		return 1
	case that.Players[1]:
		return 2
	default:
		return 0
	}
}

// Opponent - returns the other participant's connection id.
func (that *Match) Opponent(id string) string {
	if that.Players[0] == id {
		return that.Players[1]
	}

	return that.Players[0]
}

// StartRound - resets the board for the given round. Odd rounds are opened by
// participant 1, even rounds by participant 2.
func (that *Match) StartRound(round int) {
	that.Board = Board{}
	that.Round = round
	that.Turn = that.Players[(round-1)%2]
	that.Status = MatchStatusInProgress
}

// FlipTurn - hands the turn to the other participant.
func (that *Match) FlipTurn() {
	that.Turn = that.Opponent(that.Turn)
}
