package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todont/internal/config"
	"todont/internal/exitcode"
	"todont/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create an item" }
func (c *AddCmd) Usage() string      { return "todont add <desc...>" }
func (c *AddCmd) NeedsService() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	desc := strings.Join(args, " ")
	if strings.TrimSpace(desc) == "" {
		fmt.Fprintln(errOut, "error: description required")
		return exitcode.UserError
	}

	ctrl := newController(ctx, cfg, svc)
	ctrl.SetNewItem(desc)
	ctrl.AddItem(ctx)
	return settle(cfg, ctrl, out, errOut)
}
