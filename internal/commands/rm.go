package commands

import (
	"context"
	"flag"
	"io"

	"todont/internal/config"
	"todont/internal/exitcode"
	"todont/internal/service"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete an item" }
func (c *RmCmd) Usage() string      { return "todont rm <n>" }
func (c *RmCmd) NeedsService() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ctrl := newController(ctx, cfg, svc)
	item, code := loadItem(ctx, ctrl, args, errOut)
	if code != exitcode.Success {
		return code
	}
	ctrl.DeleteItem(ctx, item)
	return settle(cfg, ctrl, out, errOut)
}
