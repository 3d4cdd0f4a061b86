package cli

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/config"
)

const defaultConfigPath = "config.yml"

type options struct {
	configPath string
	identity   string
	json       bool

	conf *config.Config
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "tictactoe",
		Short: "Tic-tac-toe session engine",
		Long: `tictactoe serves two-player tic-tac-toe sessions over HTTP and WebSocket,
and can create, play and inspect sessions directly against the configured store.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			conf, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			opts.conf = conf
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "Config file path, empty to read the environment only")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newCreateCmd(opts))
	rootCmd.AddCommand(newPlayCmd(opts))
	rootCmd.AddCommand(newShowCmd(opts))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// initLogger builds the JSON logger at the configured level.
func initLogger(w io.Writer, conf *config.Config) *slog.Logger {
	var level slog.Level

	switch strings.ToLower(conf.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
