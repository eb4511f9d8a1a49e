package connectfour

import (
	"github.com/pixelhall/pixelhall-backend/internal/apperror"
	"github.com/pixelhall/pixelhall-backend/internal/entity"
)

// runLength is how many extra same-owner cells must follow an occupied cell
// for it to open a winning line (four in a row total).
const runLength = 3

// directions are checked in this order: horizontal-right, vertical-down,
// diagonal-down-right, diagonal-down-left.
var directions = [4][2]int{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

// MakeMove - validates and applies one drop for the given player, then flips
// the turn. Round and match resolution are left to the caller so the move
// update can be broadcast first.
func MakeMove(match *entity.Match, playerID string, column int) (int, error) {
	if !match.IsInProgress() {
		return 0, apperror.ErrMatchFinished
	}

	mark := match.Mark(playerID)
	if mark == 0 {
		return 0, apperror.ErrNotParticipant
	}

	if match.Turn != playerID {
		return 0, apperror.ErrNotYourTurn
	}

	row, err := Drop(&match.Board, column, mark)
	if err != nil {
		return 0, err
	}

	// The flip happens even on a round-ending move; a fresh round reassigns
	// the turn anyway.
	match.FlipTurn()

	return row, nil
}

// Drop - places a mark in the lowest empty cell of the column, scanning from
// the bottom. Returns the row the mark landed in.
func Drop(board *entity.Board, column, mark int) (int, error) {
	if column < 0 || column >= entity.BoardCols {
		return 0, apperror.ErrInvalidColumn
	}

	for row := entity.BoardRows - 1; row >= 0; row-- {
		if board[row][column] == entity.CellEmpty {
			board[row][column] = mark
			return row, nil
		}
	}

	return 0, apperror.ErrColumnFull
}

// CheckWinner - scans the board row-major for four in a row and returns the
// winning mark, or 0 when there is none.
func CheckWinner(board entity.Board) int {
	for row := 0; row < entity.BoardRows; row++ {
		for col := 0; col < entity.BoardCols; col++ {
			owner := board[row][col]
			if owner == entity.CellEmpty {
				continue
			}

			for _, dir := range directions {
				if hasRun(board, row, col, dir[0], dir[1], owner) {
					return owner
				}
			}
		}
	}

	return 0
}

// IsFull - reports whether no empty cell remains. A full board with no winner
// is a drawn round.
func IsFull(board entity.Board) bool {
	for col := 0; col < entity.BoardCols; col++ {
		if board[0][col] == entity.CellEmpty {
			return false
		}
	}

	return true
}

func hasRun(board entity.Board, row, col, dRow, dCol, owner int) bool {
	for step := 1; step <= runLength; step++ {
		r := row + dRow*step
		c := col + dCol*step

		if r < 0 || r >= entity.BoardRows || c < 0 || c >= entity.BoardCols {
			return false
		}

		if board[r][c] != owner {
			return false
		}
	}

	return true
}
