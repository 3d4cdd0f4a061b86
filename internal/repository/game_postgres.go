package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

// pgxPool is the subset of *pgxpool.Pool used here; pgxmock satisfies it in tests.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresGame struct {
	pool pgxPool
}

func NewPostgresGameRepository(pool pgxPool) GameRepository {
	return &postgresGame{
		pool: pool,
	}
}

func (that *postgresGame) Get(ctx context.Context, id entity.GameID) (*entity.Game, error) {
	var row gameRow
	err := that.pool.QueryRow(ctx, `
		SELECT challenger, opposition, turn, board, status, winner
		FROM games
		WHERE id = $1
	`, int64(id)).Scan(&row.Challenger, &row.Opposition, &row.Turn, &row.Board, &row.Status, &row.Winner)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, oops.Code("GAME_GET_FAILED").With("game_id", id).Wrap(err)
	}

	return row.toGame(id)
}

func (that *postgresGame) Set(ctx context.Context, id entity.GameID, game *entity.Game) error {
	row, err := newGameRow(game)
	if err != nil {
		return err
	}

	_, err = that.pool.Exec(ctx, `
		INSERT INTO games (id, challenger, opposition, turn, board, status, winner)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			challenger = $2, opposition = $3, turn = $4, board = $5, status = $6, winner = $7
	`, int64(id), row.Challenger, row.Opposition, row.Turn, row.Board, row.Status, row.Winner)
	if err != nil {
		return oops.Code("GAME_SET_FAILED").With("game_id", id).Wrap(err)
	}

	return nil
}

func (that *postgresGame) NextID(ctx context.Context) (entity.GameID, error) {
	var next int64
	err := that.pool.QueryRow(ctx, `
		INSERT INTO counters (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
		RETURNING value
	`, gameCounterName).Scan(&next)
	if err != nil {
		return 0, oops.Code("GAME_ID_FAILED").Wrap(err)
	}

	return entity.GameID(next - 1), nil
}
