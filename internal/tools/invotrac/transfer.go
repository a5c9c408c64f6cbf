package invotrac

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/invotrac/internal/app"
	"github.com/sandeepkv93/invotrac/internal/service"
)

func newExportCommand(opts *options) *cobra.Command {
	var (
		f       deriveFlags
		out     string
		toMinIO bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the derived product table as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			toStdout := out == "-" && !toMinIO
			if opts.ci && toStdout {
				return opts.finish(cmd.Context(), "export", nil, usageErrorf("--ci export needs --out <file> or --minio"), false)
			}
			return opts.render(cmd, "export", func(ctx context.Context, a *app.App) (string, []string, error) {
				rows, _, _, err := derivedRows(ctx, a, &f, false)
				if err != nil {
					return "", nil, err
				}
				var buf bytes.Buffer
				if err := service.ExportCSV(&buf, rows); err != nil {
					return "", nil, err
				}
				switch {
				case toMinIO:
					if a.ExportStore == nil {
						return "", nil, usageErrorf("MinIO export is not configured; set EXPORT_MINIO_ENDPOINT, EXPORT_MINIO_ACCESS_KEY, EXPORT_MINIO_SECRET_KEY and EXPORT_MINIO_BUCKET")
					}
					loc, err := a.ExportStore.Put(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
					if err != nil {
						return "", nil, err
					}
					details := []string{fmt.Sprintf("rows: %d", len(rows)), "key: " + loc.Key, "url: " + loc.URL}
					return fmt.Sprintf("Exported %d products to %s\n%s\n", len(rows), loc.Key, loc.URL), details, nil
				case toStdout:
					return buf.String(), nil, nil
				default:
					if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
						return "", nil, fmt.Errorf("write export: %w", err)
					}
					details := []string{fmt.Sprintf("rows: %d", len(rows)), "file: " + out}
					return fmt.Sprintf("Exported %d products to %s\n", len(rows), out), details, nil
				}
			})
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&out, "out", "-", "destination file, - for stdout")
	cmd.Flags().BoolVar(&toMinIO, "minio", false, "upload to the configured MinIO bucket and print a download link")
	return cmd
}

func newImportCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Create products from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return opts.finish(cmd.Context(), "import", nil, usageErrorf("open %s: %v", args[0], err), false)
			}
			defer file.Close()
			return opts.run(cmd, "import", func(ctx context.Context, a *app.App) ([]string, error) {
				report, err := a.Importer.Import(ctx, file)
				if err != nil {
					return nil, err
				}
				details := []string{
					fmt.Sprintf("rows: %d", report.Total),
					fmt.Sprintf("created: %d", report.Created),
				}
				for _, f := range report.Failures {
					details = append(details, fmt.Sprintf("line %d (id %s): %s", f.Line, f.ID, f.Reason))
				}
				if len(report.Failures) > 0 {
					return details, fmt.Errorf("%w: %d of %d rows", errImportIncomplete, len(report.Failures), report.Total)
				}
				return details, nil
			})
		},
	}
}

func newDoctorCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Probe the backend, cache, mirror and object store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, "doctor", func(ctx context.Context, a *app.App) ([]string, error) {
				healthy, results := a.Health.Run(ctx)
				details := make([]string, 0, len(results))
				for _, r := range results {
					line := fmt.Sprintf("%s: healthy (%dms)", r.Name, r.LatencyMS)
					if !r.Healthy {
						line = fmt.Sprintf("%s: unhealthy (%dms) %s", r.Name, r.LatencyMS, r.Error)
					}
					if r.Detail != "" {
						line += " " + r.Detail
					}
					details = append(details, line)
				}
				if !healthy {
					return details, errUnhealthy
				}
				return details, nil
			})
		},
	}
}
