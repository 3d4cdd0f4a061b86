package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	app "github.com/rocketscienceinc/tictactoe-sessions/internal"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/usecase"
)

var errIdentityRequired = errors.New("--as is required")

// withEngine opens the configured store for the duration of fn.
func withEngine(cmd *cobra.Command, opts *options, fn func(ctx context.Context, engine *usecase.GameManager) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := initLogger(cmd.ErrOrStderr(), opts.conf)

	repo, closeRepo, err := app.OpenRepository(ctx, logger, opts.conf)
	if err != nil {
		return err
	}
	defer closeRepo()

	return fn(ctx, usecase.NewGameManager(logger, repo))
}

func newCreateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <opponent>",
		Short: "Create a game against opponent; the caller moves first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.identity == "" {
				return errIdentityRequired
			}

			return withEngine(cmd, opts, func(ctx context.Context, engine *usecase.GameManager) error {
				id, err := engine.Create(ctx, entity.Identity(args[0]), entity.Identity(opts.identity))
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.identity, "as", "", "Caller identity")

	return cmd
}

func newPlayCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <id> <position>",
		Short: "Place the caller's mark at position 0-8",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.identity == "" {
				return errIdentityRequired
			}

			id, err := parseGameID(args[0])
			if err != nil {
				return err
			}

			pos, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position %q: %w", args[1], err)
			}

			return withEngine(cmd, opts, func(ctx context.Context, engine *usecase.GameManager) error {
				finished, err := engine.Play(ctx, id, pos, entity.Identity(opts.identity))
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), finished)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.identity, "as", "", "Caller identity")

	return cmd
}

func newShowCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGameID(args[0])
			if err != nil {
				return err
			}

			return withEngine(cmd, opts, func(ctx context.Context, engine *usecase.GameManager) error {
				game, err := engine.GetGame(ctx, id)
				if err != nil {
					return err
				}

				if opts.json {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(game)
				}

				printGame(cmd.OutOrStdout(), game)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the game as JSON")

	return cmd
}

func parseGameID(raw string) (entity.GameID, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid game id %q: %w", raw, err)
	}

	return entity.GameID(id), nil
}

func printGame(w io.Writer, game *entity.Game) {
	fmt.Fprintf(w, "game %d: %s (X) vs %s (O)\n\n", game.ID, game.Challenger, game.Opposition)

	for row := range 3 {
		cells := make([]string, 3)
		for col := range 3 {
			cell := game.Board[row*3+col].String()
			if cell == "" {
				cell = " "
			}
			cells[col] = " " + cell + " "
		}
		fmt.Fprintln(w, strings.Join(cells, "|"))
		if row < 2 {
			fmt.Fprintln(w, "---+---+---")
		}
	}

	fmt.Fprintln(w)
	if game.IsFinished() {
		fmt.Fprintf(w, "state: %s\n", game.State)
		return
	}
	fmt.Fprintf(w, "turn: %s\n", game.Turn)
}
