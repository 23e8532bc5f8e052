package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"

	"github.com/charmbracelet/log"

	"todont/internal/backend"
	"todont/internal/config"
	"todont/internal/exitcode"
	"todont/internal/server"
	"todont/internal/service"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd implements the serve command: the JSON API, the websocket feed
// and the browser page over the server backend.
type ServeCmd struct {
	listen   string
	database string

	// ready, when set, receives the bound address once listening.
	ready chan<- net.Addr
}

// SetReady registers a channel notified with the bound address (for testing).
func (c *ServeCmd) SetReady(ch chan<- net.Addr) {
	c.ready = ch
}

func (c *ServeCmd) Name() string       { return "serve" }
func (c *ServeCmd) Aliases() []string  { return nil }
func (c *ServeCmd) Synopsis() string   { return "Run the todont server" }
func (c *ServeCmd) Usage() string      { return "todont serve [--listen <addr>] [--db <path|memory>]" }
func (c *ServeCmd) NeedsService() bool { return false }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listen, "listen", "", "")
	fs.StringVar(&c.database, "db", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if c.listen != "" {
		cfg.Server.Listen = c.listen
	}
	if c.database != "" {
		cfg.Server.Database = c.database
	}
	logger := log.FromContext(ctx)

	svc, err := backend.Open(ctx, cfg, cfg.Server.Backend)
	if err != nil {
		if errors.Is(err, service.ErrAuth) {
			fmt.Fprintf(errOut, "error: auth error: %s\n", service.Message(err))
			return exitcode.AuthError
		}
		fmt.Fprintf(errOut, "error: backend error: %s\n", service.Message(err))
		return exitcode.BackendError
	}
	defer func() {
		if err := backend.Close(svc); err != nil {
			logger.Warn("closing backend", "err", err)
		}
	}()

	srv, err := server.New(svc, logger)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}

	ln, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		fmt.Fprintf(errOut, "error: listen on %s: %v\n", cfg.Server.Listen, err)
		return exitcode.UserError
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "serving %s backend on http://%s\n", cfg.Server.Backend, ln.Addr())
	}
	if c.ready != nil {
		c.ready <- ln.Addr()
	}

	if err := srv.Serve(ctx, ln); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
