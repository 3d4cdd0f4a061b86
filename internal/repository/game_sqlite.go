package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/samber/oops"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const gameCounterName = "game"

type sqliteGame struct {
	conn *sql.DB
}

// NewSQLiteGameRepository expects the schema from storage.Storage.Init to be applied.
func NewSQLiteGameRepository(conn *sql.DB) GameRepository {
	return &sqliteGame{
		conn: conn,
	}
}

func (that *sqliteGame) Get(ctx context.Context, id entity.GameID) (*entity.Game, error) {
	query := `SELECT challenger, opposition, turn, board, status, winner FROM games WHERE id = ?`

	var row gameRow
	err := that.conn.QueryRowContext(ctx, query, int64(id)).Scan(
		&row.Challenger, &row.Opposition, &row.Turn, &row.Board, &row.Status, &row.Winner,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, oops.Code("GAME_GET_FAILED").With("game_id", id).Wrap(err)
	}

	return row.toGame(id)
}

func (that *sqliteGame) Set(ctx context.Context, id entity.GameID, game *entity.Game) error {
	row, err := newGameRow(game)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO games (id, challenger, opposition, turn, board, status, winner)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		challenger = excluded.challenger,
		opposition = excluded.opposition,
		turn = excluded.turn,
		board = excluded.board,
		status = excluded.status,
		winner = excluded.winner;
	`
	_, err = that.conn.ExecContext(ctx, query,
		int64(id), row.Challenger, row.Opposition, row.Turn, row.Board, row.Status, row.Winner,
	)
	if err != nil {
		return oops.Code("GAME_SET_FAILED").With("game_id", id).Wrap(err)
	}

	return nil
}

func (that *sqliteGame) NextID(ctx context.Context) (entity.GameID, error) {
	query := `
	INSERT INTO counters (name, value) VALUES (?, 1)
	ON CONFLICT (name) DO UPDATE SET value = value + 1
	RETURNING value;
	`

	var next int64
	if err := that.conn.QueryRowContext(ctx, query, gameCounterName).Scan(&next); err != nil {
		return 0, oops.Code("GAME_ID_FAILED").Wrap(err)
	}

	return entity.GameID(next - 1), nil
}

// gameRow is the column layout shared by the SQL repositories.
type gameRow struct {
	Challenger string
	Opposition string
	Turn       string
	Board      string
	Status     string
	Winner     string
}

func newGameRow(game *entity.Game) (gameRow, error) {
	board, err := json.Marshal(game.Board)
	if err != nil {
		return gameRow{}, oops.Code("GAME_ENCODE_FAILED").With("game_id", game.ID).Wrap(err)
	}

	return gameRow{
		Challenger: string(game.Challenger),
		Opposition: string(game.Opposition),
		Turn:       string(game.Turn),
		Board:      string(board),
		Status:     string(game.State.Status),
		Winner:     string(game.State.Winner),
	}, nil
}

func (that gameRow) toGame(id entity.GameID) (*entity.Game, error) {
	var board entity.Board
	if err := json.Unmarshal([]byte(that.Board), &board); err != nil {
		return nil, oops.Code("GAME_DECODE_FAILED").With("game_id", id).Wrap(err)
	}

	return &entity.Game{
		ID:         id,
		Challenger: entity.Identity(that.Challenger),
		Opposition: entity.Identity(that.Opposition),
		Turn:       entity.Identity(that.Turn),
		Board:      board,
		State: entity.GameState{
			Status: entity.Status(that.Status),
			Winner: entity.Identity(that.Winner),
		},
	}, nil
}
