package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"

	"todont/internal/backend/googletasks"
	"todont/internal/config"
	"todont/internal/exitcode"
	"todont/internal/service"
)

const (
	defaultCallbackPort    = 8085
	callbackPortAttempts   = 5
	defaultCallbackTimeout = 5 * time.Minute
	tokenExchangeTimeout   = 30 * time.Second
)

const setupHelp = `To use the google backend, todont needs OAuth client credentials:

1. Go to https://console.cloud.google.com/apis/credentials
2. Create a project (or select an existing one)
3. Enable the Google Tasks API:
   https://console.cloud.google.com/apis/library/tasks.googleapis.com
4. Create an OAuth client ID of type "Desktop app" and download the JSON
5. Save it as:
   %s

Then run 'todont login' again.
`

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	port    int
	timeout time.Duration
}

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return nil }
func (c *LoginCmd) Synopsis() string   { return "Authenticate with Google for the google backend" }
func (c *LoginCmd) Usage() string      { return "todont login [common flags] [--port <n>] [--timeout <d>]" }
func (c *LoginCmd) NeedsService() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.port, "port", defaultCallbackPort, "first local port to try for the OAuth callback")
	fs.DurationVar(&c.timeout, "timeout", defaultCallbackTimeout, "how long to wait for the browser")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: %s not found in %s\n\n", config.OAuthClientFile, cfg.Dir)
		fmt.Fprintf(errOut, setupHelp, cfg.OAuthClientPath())
		return exitcode.AuthError
	}

	if googletasks.TokenUsable(ctx, cfg) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	token, err := c.authorize(ctx, cfg, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	if err := googletasks.SaveToken(cfg, token); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// authorize runs the PKCE authorization code flow with a local callback and
// returns the exchanged token.
func (c *LoginCmd) authorize(ctx context.Context, cfg *config.Config, errOut io.Writer) (*oauth2.Token, error) {
	logger := log.FromContext(ctx)

	oauthConfig, err := googletasks.OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	ln, err := listenCallback(c.port)
	if err != nil {
		return nil, err
	}
	defer ln.Close()

	oauthConfig.RedirectURL = fmt.Sprintf("http://%s/callback", ln.Addr())
	logger.Debug("oauth callback listening", "url", oauthConfig.RedirectURL)

	verifier := oauth2.GenerateVerifier()
	state := oauth2.GenerateVerifier()
	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, oauthConfig.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	))

	cb := newCallback(state)
	srv := &http.Server{Handler: cb.routes(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cb.fail(err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Debug("oauth callback shutdown", "err", err)
		}
	}()

	timeout := c.timeout
	if timeout <= 0 {
		timeout = defaultCallbackTimeout
	}
	code, err := cb.wait(ctx, timeout)
	if err != nil {
		return nil, err
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, tokenExchangeTimeout)
	defer cancel()
	token, err := oauthConfig.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return token, nil
}

// listenCallback binds the first free localhost port in
// [first, first+callbackPortAttempts). A first port of 0 lets the OS choose.
func listenCallback(first int) (net.Listener, error) {
	if first == 0 {
		return net.Listen("tcp", "localhost:0")
	}
	for port := first; port < first+callbackPortAttempts; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return ln, nil
		}
	}
	return nil, fmt.Errorf("could not bind to local port for OAuth callback")
}

// callback receives the authorization code from the browser redirect.
type callback struct {
	state string
	code  chan string
	err   chan error
}

func newCallback(state string) *callback {
	return &callback{
		state: state,
		code:  make(chan string, 1),
		err:   make(chan error, 1),
	}
}

func (cb *callback) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/callback", cb.handle)
	return r
}

func (cb *callback) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("state") != cb.state {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		cb.fail(errors.New("oauth state mismatch"))
		return
	}
	if e := q.Get("error"); e != "" {
		http.Error(w, "Authorization denied", http.StatusBadRequest)
		cb.fail(fmt.Errorf("authorization denied: %s", e))
		return
	}
	code := q.Get("code")
	if code == "" {
		http.Error(w, "No code in callback", http.StatusBadRequest)
		cb.fail(errors.New("no code in callback"))
		return
	}
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, "<html><body><h1>todont is logged in</h1><p>You may close this window.</p></body></html>")
	select {
	case cb.code <- code:
	default:
	}
}

func (cb *callback) fail(err error) {
	select {
	case cb.err <- err:
	default:
	}
}

func (cb *callback) wait(ctx context.Context, timeout time.Duration) (string, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case code := <-cb.code:
		return code, nil
	case err := <-cb.err:
		return "", err
	case <-t.C:
		return "", errors.New("oauth callback timed out")
	case <-ctx.Done():
		return "", errors.New("cancelled")
	}
}
