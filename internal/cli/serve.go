package cli

import (
	"os"

	"github.com/spf13/cobra"

	app "github.com/rocketscienceinc/tictactoe-sessions/internal"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket servers",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			logger := initLogger(os.Stdout, opts.conf)
			return app.RunApp(logger, opts.conf)
		},
	}
}
