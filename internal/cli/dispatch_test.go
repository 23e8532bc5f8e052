package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"todont/internal/cli"
	"todont/internal/commands"
	"todont/internal/config"
	"todont/internal/exitcode"
	"todont/internal/service"
	"todont/internal/testutil"
)

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return svc, nil
	}
}

// isolate points the default config directory at an empty temp dir.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{"TODONT_BACKEND", "TODONT_SERVER_URL", "TODONT_LISTEN", "TODONT_DATABASE", "TODONT_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func run(t *testing.T, d *cli.Dispatcher, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	code = d.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	isolate(t)
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, d, "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	isolate(t)
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, d, "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	isolate(t)
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	stdout, stderr, code := run(t, d, "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	isolate(t)
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	stdout, stderr, code := run(t, d, "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "todont 0.1.0\n" {
		t.Errorf("expected 'todont 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_FlagErrors(t *testing.T) {
	isolate(t)
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"help", "--unknown"}, "error: unknown flag: -unknown\n"},
		{[]string{"help", "--config"}, "error: flag needs an argument: -config\n"},
		{[]string{"list", "--backend", "carrier-pigeon"}, "error: unknown backend: carrier-pigeon\n"},
	}
	for _, tt := range tests {
		_, stderr, code := run(t, d, tt.args...)
		if code != exitcode.UserError {
			t.Errorf("%q: expected exit code %d, got %d", tt.args, exitcode.UserError, code)
		}
		if stderr != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.args, tt.want, stderr)
		}
	}
}

func TestDispatcher_DefaultsToList(t *testing.T) {
	isolate(t)
	svc := testutil.NewFakeService()
	svc.AddItem("Buy milk", false)
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	stdout, stderr, code := run(t, d)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "   1  [ ] Buy milk\n" {
		t.Errorf("unexpected output %q", stdout)
	}
	if svc.GetCalls != 1 {
		t.Errorf("expected 1 get call, got %d", svc.GetCalls)
	}
}

func TestDispatcher_FactoryErrors(t *testing.T) {
	isolate(t)
	tests := []struct {
		err    error
		code   int
		stderr string
	}{
		{service.Errorf(service.ErrAuth, "not logged in (run: todont login)"), exitcode.AuthError, "error: auth error: not logged in (run: todont login)\n"},
		{errors.New("dial tcp: refused"), exitcode.BackendError, "error: backend error: dial tcp: refused\n"},
	}
	for _, tt := range tests {
		factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
			return nil, tt.err
		}
		d := cli.NewDispatcher(commands.DefaultRegistry, factory)

		_, stderr, code := run(t, d, "list")
		if code != tt.code {
			t.Errorf("expected exit code %d, got %d", tt.code, code)
		}
		if stderr != tt.stderr {
			t.Errorf("expected %q, got %q", tt.stderr, stderr)
		}
	}
}

func TestDispatcher_ConfigFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte("backend = \"google\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	var seen string
	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		seen = cfg.Backend
		return testutil.NewFakeService(), nil
	}
	d := cli.NewDispatcher(commands.DefaultRegistry, factory)

	if _, stderr, code := run(t, d, "list", "--config", dir, "--quiet"); code != exitcode.Success {
		t.Fatalf("expected success, got %d (%s)", code, stderr)
	}
	if seen != config.BackendGoogle {
		t.Errorf("expected backend from config file, got %q", seen)
	}

	// Flags override the file.
	if _, stderr, code := run(t, d, "list", "--config", dir, "--backend", "LOCAL", "--quiet"); code != exitcode.Success {
		t.Fatalf("expected success, got %d (%s)", code, stderr)
	}
	if seen != config.BackendLocal {
		t.Errorf("expected backend from flag, got %q", seen)
	}
}

func TestDispatcher_LocalBackendPersists(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	d := cli.NewDispatcher(commands.DefaultRegistry, nil)

	steps := []struct {
		args []string
		out  string
	}{
		{[]string{"add", "--config", dir, "--backend", "local", "Buy", "milk"}, "ok\n"},
		{[]string{"add", "--config", dir, "--backend", "local", "Buy eggs"}, "ok\n"},
		{[]string{"done", "--config", dir, "--backend", "local", "2"}, "ok\n"},
		{[]string{"rm", "--config", dir, "--backend", "local", "1"}, "ok\n"},
		{[]string{"list", "--config", dir, "--backend", "local"}, "   1  [x] Buy eggs\n"},
	}
	for _, st := range steps {
		stdout, stderr, code := run(t, d, st.args...)
		if code != exitcode.Success {
			t.Fatalf("%q: expected success, got %d (%s)", st.args, code, stderr)
		}
		if stdout != st.out {
			t.Errorf("%q: expected %q, got %q", st.args, st.out, stdout)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, config.DatabaseFile)); err != nil {
		t.Errorf("expected sqlite database in config dir: %v", err)
	}
}

func TestDispatcher_BadGoogleCredentials(t *testing.T) {
	tests := []struct {
		name       string
		client     string
		token      string
		wantPrefix string
	}{
		{"corrupt client", `{`, `{"refresh_token":"r"}`, "error: auth error: invalid oauth_client.json: "},
		{"corrupt token", `{"installed":{"client_id":"c","client_secret":"s","redirect_uris":["http://localhost"]}}`, `{`, "error: auth error: invalid token.json: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			dir := t.TempDir()
			for name, body := range map[string]string{config.OAuthClientFile: tt.client, config.TokenFile: tt.token} {
				if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0600); err != nil {
					t.Fatal(err)
				}
			}
			d := cli.NewDispatcher(commands.DefaultRegistry, nil)

			_, stderr, code := run(t, d, "list", "--config", dir, "--backend", "google")

			if code != exitcode.AuthError {
				t.Errorf("expected exit code %d, got %d (%s)", exitcode.AuthError, code, stderr)
			}
			if !strings.HasPrefix(stderr, tt.wantPrefix) {
				t.Errorf("expected stderr to start with %q, got %q", tt.wantPrefix, stderr)
			}
		})
	}
}
