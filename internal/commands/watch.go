package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"todont/internal/config"
	"todont/internal/exitcode"
	"todont/internal/output"
	"todont/internal/server"
	"todont/internal/service"
)

func init() {
	Register(&WatchCmd{})
}

// WatchCmd implements the watch command. It connects to a todont server's
// websocket feed and prints the list every time it changes.
type WatchCmd struct {
	once bool
}

// SetOnce makes the command exit after the first list (for testing).
func (c *WatchCmd) SetOnce(once bool) {
	c.once = once
}

func (c *WatchCmd) Name() string       { return "watch" }
func (c *WatchCmd) Aliases() []string  { return nil }
func (c *WatchCmd) Synopsis() string   { return "Print the list whenever the server reports a change" }
func (c *WatchCmd) Usage() string      { return "todont watch [--once]" }
func (c *WatchCmd) NeedsService() bool { return false }

func (c *WatchCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.once, "once", false, "")
}

func (c *WatchCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	wsURL, err := feedURL(cfg.ServerURL)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	logger := log.FromContext(ctx)

	dialer := websocket.Dialer{HandshakeTimeout: cfg.RequestTimeout.Duration}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: server unreachable: %v\n", err)
		return exitcode.BackendError
	}
	defer conn.Close()
	logger.Debug("watching", "url", wsURL)

	// Unblock ReadJSON when the context ends.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	first := true
	for {
		var msg server.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return exitcode.Success
			}
			fmt.Fprintf(errOut, "error: backend error: connection lost: %v\n", err)
			return exitcode.BackendError
		}
		if msg.Type != server.MsgItems {
			logger.Debug("ignoring message", "type", msg.Type)
			continue
		}

		if !first {
			fmt.Fprintln(out, output.Separator)
		}
		first = false
		if len(msg.Data.Items) == 0 && !cfg.Quiet {
			fmt.Fprintln(out, "no items")
		}
		output.FormatItems(out, msg.Data.Items)

		if c.once {
			return exitcode.Success
		}
	}
}

// feedURL turns a server base URL into its websocket feed URL.
func feedURL(serverURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid server url: %s", serverURL)
	}
	u.Path += "/ws"
	return u.String(), nil
}
