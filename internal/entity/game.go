package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

// BoardSize is the number of cells on the 3x3 board, indexed row-major.
const BoardSize = 9

type GameID uint64

// Identity is an opaque participant identity supplied by the host.
type Identity string

type CellState uint8

const (
	Empty CellState = iota
	MarkA
	MarkB
)

const (
	MarkAString = "X"
	MarkBString = "O"
	EmptyString = ""
)

var ErrUnknownCellState = errors.New("unknown cell state")

func (c CellState) String() string {
	switch c {
	case MarkA:
		return MarkAString
	case MarkB:
		return MarkBString
	default:
		return EmptyString
	}
}

func (c CellState) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *CellState) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("could not unmarshal cell: %w", err)
	}

	switch s {
	case EmptyString:
		*c = Empty
	case MarkAString:
		*c = MarkA
	case MarkBString:
		*c = MarkB
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCellState, s)
	}

	return nil
}

type Board [BoardSize]CellState

// IsFull reports whether no cell is Empty.
func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == Empty {
			return false
		}
	}
	return true
}

type Status string

const (
	StatusInPlay Status = "in_play"
	StatusWinner Status = "winner"
	StatusDraw   Status = "draw"
)

// GameState is InPlay, Winner(identity) or Draw. Winner is only set for StatusWinner.
type GameState struct {
	Status Status   `json:"status"`
	Winner Identity `json:"winner,omitempty"`
}

func InPlay() GameState {
	return GameState{Status: StatusInPlay}
}

func Winner(identity Identity) GameState {
	return GameState{Status: StatusWinner, Winner: identity}
}

func Draw() GameState {
	return GameState{Status: StatusDraw}
}

func (that GameState) IsInPlay() bool {
	return that.Status == StatusInPlay
}

func (that GameState) String() string {
	if that.Status == StatusWinner {
		return fmt.Sprintf("%s(%s)", that.Status, that.Winner)
	}
	return string(that.Status)
}

type Game struct {
	ID         GameID    `json:"id"`
	Challenger Identity  `json:"challenger"`
	Opposition Identity  `json:"opposition"`
	Turn       Identity  `json:"turn"`
	Board      Board     `json:"board"`
	State      GameState `json:"state"`
}

// NewGame builds a fresh session where the challenger moves first.
func NewGame(id GameID, challenger, opposition Identity) *Game {
	return &Game{
		ID:         id,
		Challenger: challenger,
		Opposition: opposition,
		Turn:       challenger,
		Board:      Board{},
		State:      InPlay(),
	}
}

func (that *Game) IsFinished() bool {
	return !that.State.IsInPlay()
}

// IsPlayer reports whether identity is the challenger or the opposition.
func (that *Game) IsPlayer(identity Identity) bool {
	return identity == that.Challenger || identity == that.Opposition
}

// MarkOf returns the mark placed by identity. In a self-play session the opposition mark is used.
func (that *Game) MarkOf(identity Identity) CellState {
	switch identity {
	case that.Opposition:
		return MarkB
	case that.Challenger:
		return MarkA
	default:
		return Empty
	}
}

// OtherPlayer returns the participant who is not identity.
func (that *Game) OtherPlayer(identity Identity) Identity {
	if identity == that.Challenger {
		return that.Opposition
	}
	return that.Challenger
}
