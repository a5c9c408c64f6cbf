package invotrac

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/invotrac/internal/session"
	"github.com/sandeepkv93/invotrac/internal/tools/ui"
)

func newConsoleCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Browse, search, sort and edit products interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if opts.ci {
				return opts.finish(ctx, "console", nil, usageErrorf("console is interactive and cannot run with --ci"), false)
			}
			// The console owns the terminal, so logs need LOG_FILE to be kept.
			a, cleanup, err := opts.loadApp(io.Discard)
			if err != nil {
				return opts.finish(ctx, "console", nil, err, false)
			}
			defer cleanup()

			sess := session.New(a.Inventory, a.Config.NoticeTTL, a.Logger)
			defer sess.Close()
			return opts.finish(ctx, "console", nil, ui.RunConsole(ctx, sess, a.Config.BackendTimeout), false)
		},
	}
}
