package invotrac

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/invotrac/internal/app"
	"github.com/sandeepkv93/invotrac/internal/database"
	"github.com/sandeepkv93/invotrac/internal/repository"
	"github.com/sandeepkv93/invotrac/internal/service"
)

func newMirrorCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Manage the local product mirror used by list --offline",
	}
	cmd.AddCommand(
		newMirrorMigrateCommand(opts),
		newMirrorStatusCommand(opts),
		newMirrorSyncCommand(opts),
	)
	return cmd
}

func mirrorOf(a *app.App) (repository.ProductMirror, error) {
	if a.MirrorDB == nil {
		return nil, service.ErrMirrorDisabled
	}
	return repository.NewProductMirror(a.MirrorDB), nil
}

func newMirrorMigrateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the mirror schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, "mirror migrate", func(ctx context.Context, a *app.App) ([]string, error) {
				if a.MirrorDB == nil {
					return nil, service.ErrMirrorDisabled
				}
				if err := database.Migrate(a.MirrorDB); err != nil {
					return nil, err
				}
				return []string{"schema migration applied", "driver: " + a.Config.MirrorDriver}, nil
			})
		},
	}
}

func newMirrorStatusCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show how many products are mirrored and when",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, "mirror status", func(ctx context.Context, a *app.App) ([]string, error) {
				mirror, err := mirrorOf(a)
				if err != nil {
					return nil, err
				}
				count, err := mirror.Count(ctx)
				if err != nil {
					return nil, err
				}
				synced := "never"
				at, err := mirror.SyncedAt(ctx)
				switch {
				case err == nil:
					synced = at.UTC().Format(time.RFC3339)
				case !errors.Is(err, repository.ErrMirrorNeverSynced):
					return nil, err
				}
				return []string{
					"driver: " + a.Config.MirrorDriver,
					fmt.Sprintf("rows: %d", count),
					"synced_at: " + synced,
				}, nil
			})
		},
	}
}

func newMirrorSyncCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replace the mirror with the backend's current products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, "mirror sync", func(ctx context.Context, a *app.App) ([]string, error) {
				mirror, err := mirrorOf(a)
				if err != nil {
					return nil, err
				}
				// Straight to the backend; a cached list could be stale.
				products, err := a.Client.List(ctx)
				if err != nil {
					return nil, withDetail(err)
				}
				if err := mirror.ReplaceAll(ctx, products); err != nil {
					return nil, err
				}
				return []string{fmt.Sprintf("rows: %d", len(products))}, nil
			})
		},
	}
}
