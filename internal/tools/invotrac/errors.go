package invotrac

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/sandeepkv93/invotrac/internal/catalog"
	"github.com/sandeepkv93/invotrac/internal/client"
	"github.com/sandeepkv93/invotrac/internal/config"
	"github.com/sandeepkv93/invotrac/internal/domain"
	"github.com/sandeepkv93/invotrac/internal/service"
)

const (
	ExitOK             = 0
	ExitUsage          = 2
	ExitBackend        = 3
	ExitInfrastructure = 4
)

var (
	errUsage            = errors.New("usage")
	errImportIncomplete = errors.New("import finished with failed rows")
	errUnhealthy        = errors.New("one or more dependencies are unhealthy")
)

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errUsage}, args...)...)
}

// exitError carries the process exit code of a failed command and whether
// the failure was already shown to the user.
type exitError struct {
	err      error
	code     int
	reported bool
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

// ExitCode maps an error returned by Execute to a process exit code. Errors
// raised by cobra itself (unknown command, bad flag, wrong arg count) are
// usage errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitUsage
}

// Reported reports whether the error was already printed, either as a CI
// result or by the progress view.
func Reported(err error) bool {
	var ee *exitError
	return errors.As(err, &ee) && ee.reported
}

func classify(err error) int {
	var apiErr *client.APIError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errUsage),
		errors.Is(err, config.ErrInvalid),
		errors.Is(err, catalog.ErrUnknownSortKey),
		errors.Is(err, catalog.ErrUnknownDirection),
		errors.Is(err, service.ErrMirrorDisabled),
		errors.Is(err, service.ErrImportEmpty),
		errors.Is(err, service.ErrImportMissingColumn),
		isFormError(err):
		return ExitUsage
	case errors.As(err, &apiErr),
		errors.Is(err, client.ErrProductNotFound),
		errors.Is(err, client.ErrBackendUnavailable),
		errors.Is(err, client.ErrInvalidResponse),
		errors.Is(err, errImportIncomplete):
		return ExitBackend
	default:
		return ExitInfrastructure
	}
}

func isFormError(err error) bool {
	return errors.Is(err, domain.ErrProductInvalidID) ||
		errors.Is(err, domain.ErrProductNameRequired) ||
		errors.Is(err, domain.ErrProductDescriptionRequired) ||
		errors.Is(err, domain.ErrProductInvalidPrice) ||
		errors.Is(err, domain.ErrProductInvalidQuantity)
}

// detailError shows the backend's detail text in place of the wrapped
// error's own message.
type detailError struct{ err error }

func (e detailError) Error() string { return client.DetailOf(e.err, e.err.Error()) }

func (e detailError) Unwrap() error { return e.err }

func withDetail(err error) error {
	if err == nil {
		return nil
	}
	return detailError{err: err}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, usageErrorf("product id %q is not an integer", arg)
	}
	return id, nil
}
