package invotrac

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/invotrac/internal/app"
	"github.com/sandeepkv93/invotrac/internal/catalog"
	"github.com/sandeepkv93/invotrac/internal/domain"
	"github.com/sandeepkv93/invotrac/internal/observability"
	"github.com/sandeepkv93/invotrac/internal/session"
	"github.com/sandeepkv93/invotrac/internal/tools/ui"
)

type deriveFlags struct {
	query string
	sort  string
	desc  bool
}

func (f *deriveFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.query, "query", "", "case-insensitive filter on id, name or description")
	cmd.Flags().StringVar(&f.sort, "sort", "id", "sort key: id, name, description, price or quantity")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "sort descending")
}

func (f *deriveFlags) state() (catalog.SortState, error) {
	key, err := catalog.ParseSortKey(f.sort)
	if err != nil {
		return catalog.SortState{}, fmt.Errorf("--sort %q: %w", f.sort, err)
	}
	state := catalog.SortState{Key: key, Direction: catalog.Asc}
	if f.desc {
		state.Direction = catalog.Desc
	}
	return state, nil
}

// derivedRows fetches the collection (live or from the mirror) and derives
// the displayed rows from it.
func derivedRows(ctx context.Context, a *app.App, f *deriveFlags, offline bool) (rows []domain.Product, total int, note string, err error) {
	state, err := f.state()
	if err != nil {
		return nil, 0, "", err
	}
	var products []domain.Product
	if offline {
		var syncedAt time.Time
		products, syncedAt, err = a.Inventory.ListOffline(ctx)
		if err != nil {
			return nil, 0, "", err
		}
		note = "Offline snapshot (never synced)"
		if !syncedAt.IsZero() {
			note = "Offline snapshot from " + syncedAt.Local().Format(time.RFC1123)
		}
	} else {
		products, err = a.Inventory.List(ctx)
		if err != nil {
			return nil, 0, "", fmt.Errorf("%s: %w", session.MsgFetchFailed, withDetail(err))
		}
	}
	rows = catalog.Derive(products, f.query, state)
	observability.RecordDeriveRows(ctx, string(state.Key), len(rows))
	return rows, len(products), note, nil
}

func totalLine(shown, total int) string {
	if shown == total {
		return fmt.Sprintf("Total: %d", total)
	}
	return fmt.Sprintf("Total: %d of %d", shown, total)
}

func rowDetail(p domain.Product) string {
	return strings.Join(ui.Cells(p), " | ")
}

func newListCommand(opts *options) *cobra.Command {
	var f deriveFlags
	var offline bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the filtered and sorted product table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.render(cmd, "list", func(ctx context.Context, a *app.App) (string, []string, error) {
				rows, total, note, err := derivedRows(ctx, a, &f, offline)
				if err != nil {
					return "", nil, err
				}
				state, _ := f.state()
				var b strings.Builder
				if note != "" {
					b.WriteString(note + "\n")
				}
				b.WriteString(ui.ProductTable(rows, state, -1) + "\n")
				b.WriteString(totalLine(len(rows), total) + "\n")

				details := make([]string, 0, len(rows)+1)
				for _, p := range rows {
					details = append(details, rowDetail(p))
				}
				details = append(details, strings.ToLower(totalLine(len(rows), total)))
				return b.String(), details, nil
			})
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&offline, "offline", false, "read the local mirror instead of the backend")
	return cmd
}

func newShowCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.render(cmd, "show", func(ctx context.Context, a *app.App) (string, []string, error) {
				id, err := parseID(args[0])
				if err != nil {
					return "", nil, err
				}
				p, err := a.Inventory.Get(ctx, id)
				if err != nil {
					return "", nil, fmt.Errorf("product %d: %w", id, withDetail(err))
				}
				details := []string{
					fmt.Sprintf("id: %d", p.ID),
					"name: " + p.Name,
					"description: " + p.Description,
					"price: " + p.Price.Format2(),
					"quantity: " + p.Quantity.String(),
				}
				return strings.Join(details, "\n") + "\n", details, nil
			})
		},
	}
}

type formFlags struct {
	id          string
	name        string
	description string
	price       string
	quantity    string
}

func (f *formFlags) register(cmd *cobra.Command, withID bool) {
	if withID {
		cmd.Flags().StringVar(&f.id, "id", "", "product id (integer)")
	}
	cmd.Flags().StringVar(&f.name, "name", "", "product name")
	cmd.Flags().StringVar(&f.description, "description", "", "product description")
	cmd.Flags().StringVar(&f.price, "price", "", "unit price")
	cmd.Flags().StringVar(&f.quantity, "quantity", "", "quantity on hand")
}

// overlay copies the flags the user actually set onto form.
func (f *formFlags) overlay(cmd *cobra.Command, form domain.ProductForm) domain.ProductForm {
	changed := cmd.Flags().Changed
	if changed("id") {
		form.ID = f.id
	}
	if changed("name") {
		form.Name = f.name
	}
	if changed("description") {
		form.Description = f.description
	}
	if changed("price") {
		form.Price = f.price
	}
	if changed("quantity") {
		form.Quantity = f.quantity
	}
	return form
}

func newAddCommand(opts *options) *cobra.Command {
	var f formFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := f.overlay(cmd, domain.ProductForm{}).ToProduct()
			if err != nil {
				return opts.finish(cmd.Context(), "add", nil, err, false)
			}
			return opts.run(cmd, "add", func(ctx context.Context, a *app.App) ([]string, error) {
				created, err := a.Inventory.Create(ctx, p)
				if err != nil {
					return nil, withDetail(err)
				}
				return []string{session.MsgCreated, fmt.Sprintf("id: %d", created.ID)}, nil
			})
		},
	}
	f.register(cmd, true)
	return cmd
}

func newUpdateCommand(opts *options) *cobra.Command {
	var f formFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a product; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return opts.finish(cmd.Context(), "update", nil, err, false)
			}
			return opts.run(cmd, "update", func(ctx context.Context, a *app.App) ([]string, error) {
				current, err := a.Inventory.Get(ctx, id)
				if err != nil {
					return nil, fmt.Errorf("product %d: %w", id, withDetail(err))
				}
				p, err := f.overlay(cmd, domain.FormFromProduct(current)).ToProduct()
				if err != nil {
					return nil, err
				}
				if _, err := a.Inventory.Update(ctx, id, p); err != nil {
					return nil, withDetail(err)
				}
				return []string{session.MsgUpdated, fmt.Sprintf("id: %d", id)}, nil
			})
		},
	}
	f.register(cmd, false)
	return cmd
}

func newDeleteCommand(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return opts.finish(cmd.Context(), "delete", nil, err, false)
			}
			if !yes {
				if opts.ci {
					return opts.finish(cmd.Context(), "delete", nil, usageErrorf("--yes is required with --ci"), false)
				}
				if !opts.confirm("Delete this product?") {
					fmt.Fprintln(opts.out, "Delete cancelled")
					return nil
				}
			}
			return opts.run(cmd, "delete", func(ctx context.Context, a *app.App) ([]string, error) {
				if err := a.Inventory.Delete(ctx, id); err != nil {
					return nil, fmt.Errorf("%s: %w", session.MsgDeleteFailed, withDetail(err))
				}
				return []string{session.MsgDeleted, fmt.Sprintf("id: %d", id)}, nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
