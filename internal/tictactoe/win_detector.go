package tictactoe

import "github.com/rocketscienceinc/tictactoe-sessions/internal/entity"

// WinLines lists every line in evaluation order: rows, columns, then diagonals.
var WinLines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Evaluate reports the state of board. The first complete line decides the winner,
// a full board without one is a draw, anything else is still in play.
func Evaluate(board entity.Board, challenger, opposition entity.Identity) entity.GameState {
	if mark := completedLine(board); mark != entity.Empty {
		return winnerFor(mark, challenger, opposition)
	}

	if board.IsFull() {
		return entity.Draw()
	}

	return entity.InPlay()
}

func completedLine(board entity.Board) entity.CellState {
	for _, line := range WinLines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != entity.Empty && a == b && b == c {
			return a
		}
	}

	return entity.Empty
}

func winnerFor(mark entity.CellState, challenger, opposition entity.Identity) entity.GameState {
	if mark == entity.MarkA {
		return entity.Winner(challenger)
	}
	return entity.Winner(opposition)
}
