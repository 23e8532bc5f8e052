// Package cli parses command lines and dispatches them to commands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"todont/internal/backend"
	"todont/internal/commands"
	"todont/internal/config"
	"todont/internal/exitcode"
	"todont/internal/logging"
	"todont/internal/service"
)

// ServiceFactory creates a Service from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config) (service.Service, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
// A nil factory opens the backend named by the config.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	if factory == nil {
		factory = func(ctx context.Context, cfg *config.Config) (service.Service, error) {
			return backend.Open(ctx, cfg, cfg.Backend)
		}
	}
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// Flags require a command
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, err := d.registry.Resolve(cmdName)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var (
		configDir   string
		backendName string
		quiet       bool
		debug       bool
	)
	fs.StringVar(&configDir, "config", "", "")
	fs.StringVar(&backendName, "backend", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagError(err))
		return exitcode.UserError
	}

	// A leading dash here means a flag after a positional argument.
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug
	if backendName != "" {
		cfg.Backend = backendName
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.UserError
		}
	}

	logger := logging.New(errOut, logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Debug:  cfg.Debug,
	})
	ctx = log.WithContext(ctx, logger)
	logger.Debug("dispatch", "command", cmd.Name(), "backend", cfg.Backend, "config", cfg.Dir)

	var svc service.Service
	if cmd.NeedsService() {
		svc, err = d.factory(ctx, cfg)
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
	}

	return cmd.Run(ctx, cfg, svc, positionalArgs, out, errOut)
}

// flagError rewrites flag package errors in the CLI's own wording.
func flagError(err error) string {
	errStr := err.Error()
	switch {
	case strings.HasPrefix(errStr, "flag needs an argument:"):
		return "flag needs an argument: " + strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
	case strings.HasPrefix(errStr, "flag provided but not defined:"):
		return "unknown flag: " + strings.TrimSpace(strings.TrimPrefix(errStr, "flag provided but not defined:"))
	default:
		return errStr
	}
}
