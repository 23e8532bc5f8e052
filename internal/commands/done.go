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
	Register(&DoneCmd{})
}

// DoneCmd implements the done command. It toggles completion, so running it
// twice reopens the item.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string   { return "Toggle an item's completion" }
func (c *DoneCmd) Usage() string      { return "todont done <n>" }
func (c *DoneCmd) NeedsService() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ctrl := newController(ctx, cfg, svc)
	item, code := loadItem(ctx, ctrl, args, errOut)
	if code != exitcode.Success {
		return code
	}
	ctrl.CompleteItem(ctx, item)
	return settle(cfg, ctrl, out, errOut)
}
