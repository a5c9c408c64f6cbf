package invotrac

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/invotrac/internal/app"
	"github.com/sandeepkv93/invotrac/internal/config"
	"github.com/sandeepkv93/invotrac/internal/di"
	"github.com/sandeepkv93/invotrac/internal/observability"
	"github.com/sandeepkv93/invotrac/internal/tools/common"
	"github.com/sandeepkv93/invotrac/internal/tools/ui"
)

type appFactory func(cfg *config.Config, logOut io.Writer) (*app.App, error)

type options struct {
	envFile string
	ci      bool

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	newApp appFactory
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(&options{
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		newApp: di.InitializeApp,
	})
}

func newRootCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "invotrac",
		Short:         "Browse and manage the InvoTrac product inventory",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.SetIn(opts.in)
	cmd.SetOut(opts.out)
	cmd.SetErr(opts.errOut)
	cmd.AddCommand(
		newListCommand(opts),
		newShowCommand(opts),
		newAddCommand(opts),
		newUpdateCommand(opts),
		newDeleteCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
		newDoctorCommand(opts),
		newMirrorCommand(opts),
		newConsoleCommand(opts),
	)
	return cmd
}

// loadApp builds the application graph for one command. Logs never share
// stdout with command output.
func (o *options) loadApp(logFallback io.Writer) (*app.App, func(), error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, nil, err
	}
	logOut, closeLog, err := observability.OpenLogOutput(cfg, logFallback)
	if err != nil {
		return nil, nil, err
	}
	a, err := o.newApp(cfg, logOut)
	if err != nil {
		_ = closeLog()
		return nil, nil, err
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Close(ctx); err != nil {
			a.Logger.Warn("app shutdown failed", "error", err)
		}
		_ = closeLog()
	}
	return a, cleanup, nil
}

type action func(ctx context.Context, a *app.App) ([]string, error)

// run executes a mutating command behind the progress view, or directly with
// a JSON result in CI mode.
func (o *options) run(cmd *cobra.Command, title string, fn action) (result error) {
	ctx := cmd.Context()
	a, cleanup, err := o.loadApp(o.errOut)
	if err != nil {
		return o.finish(ctx, title, nil, err, false)
	}
	defer cleanup()
	ctx, endSpan := observability.StartCommandSpan(ctx, title)
	defer func() { endSpan(result) }()

	if o.ci {
		details, err := fn(ctx, a)
		return o.finish(ctx, title, details, err, true)
	}
	var actionErr error
	ran := false
	details, err := ui.Run(ctx, title, func(ctx context.Context) ([]string, error) {
		d, err := fn(ctx, a)
		ran, actionErr = true, err
		return d, err
	})
	return o.finish(ctx, title, details, err, ran && errors.Is(err, actionErr))
}

// render executes a read-only command. Humans get text on stdout, CI gets the
// JSON result with one detail per line.
func (o *options) render(cmd *cobra.Command, title string, fn func(ctx context.Context, a *app.App) (string, []string, error)) (result error) {
	ctx := cmd.Context()
	a, cleanup, err := o.loadApp(o.errOut)
	if err != nil {
		return o.finish(ctx, title, nil, err, false)
	}
	defer cleanup()
	ctx, endSpan := observability.StartCommandSpan(ctx, title)
	defer func() { endSpan(result) }()

	text, details, err := fn(ctx, a)
	if err == nil && !o.ci {
		fmt.Fprint(o.out, text)
	}
	return o.finish(ctx, title, details, err, o.ci)
}

func (o *options) finish(ctx context.Context, title string, details []string, err error, reported bool) error {
	code := classify(err)
	outcome := "success"
	if err != nil {
		outcome = "exit_" + strconv.Itoa(code)
	}
	observability.RecordToolCommandRun(ctx, title, outcome)
	if o.ci {
		common.PrintCIResult(o.out, title, details, err, code)
		reported = true
	}
	if err == nil {
		return nil
	}
	return &exitError{err: err, code: code, reported: reported}
}

// confirm asks a yes/no question on the command's streams. Anything other
// than y or yes declines.
func (o *options) confirm(question string) bool {
	fmt.Fprintf(o.out, "%s [y/N] ", question)
	line, err := bufio.NewReader(o.in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
