package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todont/internal/config"
	"todont/internal/exitcode"
	"todont/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "todont help" }
func (c *HelpCmd) NeedsService() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  todont                                   List all items
  todont list [common flags] [--summary]   List all items
  todont add [common flags] <desc...>      Create an item (alias: create)
  todont done [common flags] <n>           Toggle item n (alias: toggle)
  todont rm [common flags] <n>             Delete item n (alias: delete)
  todont tui [common flags]                Interactive list
  todont serve [common flags] [--listen <addr>] [--db <path|memory>]
  todont watch [common flags] [--once]     Print the list on every change
  todont login [common flags] [--port <n>] [--timeout <d>]
  todont logout [common flags]
  todont help
  todont version

Common flags:
  --config <dir>       Override config directory
  --backend <name>     Backend: http, local or google
  --quiet              Suppress informational output
  --debug              Print debug logs to stderr
`
