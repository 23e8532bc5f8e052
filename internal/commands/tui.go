package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"todont/internal/config"
	"todont/internal/controller"
	"todont/internal/exitcode"
	"todont/internal/service"
	"todont/internal/tui"
)

func init() {
	Register(&TUICmd{})
}

// TUICmd implements the tui command.
type TUICmd struct{}

func (c *TUICmd) Name() string       { return "tui" }
func (c *TUICmd) Aliases() []string  { return nil }
func (c *TUICmd) Synopsis() string   { return "Interactive terminal list" }
func (c *TUICmd) Usage() string      { return "todont tui" }
func (c *TUICmd) NeedsService() bool { return true }

func (c *TUICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TUICmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !tui.IsTTY(out) {
		fmt.Fprintln(errOut, "error: tui requires a terminal")
		return exitcode.UserError
	}
	err := tui.Run(ctx, svc,
		controller.WithLogger(log.FromContext(ctx)),
		controller.WithInitDelay(cfg.InitDelay.Duration),
	)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
