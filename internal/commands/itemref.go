package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode"

	"github.com/charmbracelet/log"

	"todont/internal/config"
	"todont/internal/controller"
	"todont/internal/exitcode"
	"todont/internal/service"
)

// ErrItemRefRequired indicates no item reference was provided.
var ErrItemRefRequired = errors.New("item reference required")

// ParseItemRef parses a 1-based item number from args.
// Only the first argument is considered and it must be all digits.
func ParseItemRef(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrItemRefRequired
	}
	ref := args[0]
	if !isAllDigits(ref) {
		return 0, fmt.Errorf("invalid item reference: %s", ref)
	}
	num, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("invalid item reference: %s", ref)
	}
	return num, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// newController creates a list controller for a command run.
func newController(ctx context.Context, cfg *config.Config, svc service.Service) *controller.ListController {
	return controller.New(svc,
		controller.WithLogger(log.FromContext(ctx)),
		controller.WithInitDelay(cfg.InitDelay.Duration),
	)
}

// loadItem fetches the list and returns the item at 1-based position num.
// On failure it prints the error and returns a non-zero exit code.
func loadItem(ctx context.Context, c *controller.ListController, args []string, errOut io.Writer) (service.Item, int) {
	num, err := ParseItemRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Item{}, exitcode.UserError
	}

	c.GetItems(ctx)
	st := c.State()
	if st.HasError() {
		fmt.Fprintf(errOut, "error: backend error: %s\n", st.ErrorMsg)
		return service.Item{}, exitcode.BackendError
	}
	if num < 1 || num > len(st.Items) {
		fmt.Fprintf(errOut, "error: item number out of range: %d\n", num)
		return service.Item{}, exitcode.UserError
	}
	return st.Items[num-1], exitcode.Success
}

// settle reports the controller's error state after a mutation.
func settle(cfg *config.Config, c *controller.ListController, out, errOut io.Writer) int {
	if st := c.State(); st.HasError() {
		fmt.Fprintf(errOut, "error: backend error: %s\n", st.ErrorMsg)
		return exitcode.BackendError
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
