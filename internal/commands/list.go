package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todont/internal/config"
	"todont/internal/exitcode"
	"todont/internal/output"
	"todont/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `todont` (no args) and `todont list`.
type ListCmd struct {
	summary bool
}

// SetSummary enables the summary line (for testing).
func (c *ListCmd) SetSummary(summary bool) {
	c.summary = summary
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List items" }
func (c *ListCmd) Usage() string      { return "todont list [--summary]" }
func (c *ListCmd) NeedsService() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.summary, "summary", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	ctrl := newController(ctx, cfg, svc)
	ctrl.GetItems(ctx)
	st := ctrl.State()
	if st.HasError() {
		fmt.Fprintf(errOut, "error: backend error: %s\n", st.ErrorMsg)
		return exitcode.BackendError
	}

	if len(st.Items) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no items")
		}
		return exitcode.Success
	}

	output.FormatItems(out, st.Items)
	if c.summary {
		output.FormatSummary(out, st.Items)
	}
	return exitcode.Success
}
