package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/manageday-dev/manageday/internal/api"
	"github.com/manageday-dev/manageday/internal/authz"
	envcfg "github.com/manageday-dev/manageday/internal/config"
	"github.com/manageday-dev/manageday/internal/cli/config"
	"github.com/manageday-dev/manageday/internal/cli/serverselect"
	"github.com/manageday-dev/manageday/internal/logger"
	"github.com/manageday-dev/manageday/internal/session"
)

// deps bundles everything a command needs: the resolved API environment,
// the credential store, the session context, and the API client. Commands
// receive it explicitly so tests can wire in-memory backends and mock
// servers instead of the OS keyring and the real API.
type deps struct {
	server *config.Server
	store  *session.Store
	sess   *session.Context
	client *api.Client
	out    io.Writer
}

// newDeps is the production wiring: keyring for the durable scope, a file
// under the user runtime dir for the ephemeral scope.
func newDeps(serverAlias string) (*deps, error) {
	server, err := getSelectedServer(serverAlias)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(
		session.NewKeyringBackend(""),
		session.NewFileBackend(session.DefaultEphemeralPath(), 0),
	)

	sess := session.NewContext(store)
	sess.Init()

	env, err := envcfg.Load()
	if err != nil {
		return nil, err
	}

	out := os.Stdout
	client := api.New(server.URL, store,
		api.WithTimeout(env.API.Timeout),
		api.WithLogger(logger.GetLogger()),
		api.WithSessionExpiredHook(expireSessionHook(sess, out)),
	)

	return &deps{
		server: server,
		store:  store,
		sess:   sess,
		client: client,
		out:    out,
	}, nil
}

// expireSessionHook is the pipeline's 401 reaction: the store is already
// cleared by the pipeline itself, but the in-process session state must
// converge too. Logout is idempotent, so re-clearing the store is harmless.
func expireSessionHook(sess *session.Context, out io.Writer) func() {
	return func() {
		sess.Logout()
		fmt.Fprintln(out, "Session expired. Run 'manageday login' to authenticate again.")
	}
}

// getSelectedServer loads the project config and resolves which API
// environment to use. MANAGEDAY_API_URL overrides the config entirely.
func getSelectedServer(serverAlias string) (*config.Server, error) {
	env, err := envcfg.Load()
	if err == nil && env.API.URL != "" {
		return &config.Server{URL: env.API.URL, Alias: "env"}, nil
	}

	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'manageday init' to create a configuration file", err)
	}

	server, err := serverselect.ResolveServer(cfg, serverAlias)
	if err != nil {
		return nil, err
	}

	if server.URL == "" {
		return nil, fmt.Errorf("server URL is empty. Please edit manageday.json and add a valid API URL")
	}

	return server, nil
}

// requireAdmin gates privileged commands on the derived role, the same way
// route guards gated privileged screens. It reads, never writes.
func requireAdmin(d *deps) error {
	if !d.sess.Authenticated() {
		return fmt.Errorf("not authenticated. Please run 'manageday login' first")
	}
	if d.sess.Role() != authz.RoleAdmin {
		return fmt.Errorf("this command requires the admin role")
	}
	return nil
}
