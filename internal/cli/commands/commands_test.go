package commands

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/manageday-dev/manageday/internal/api"
	"github.com/manageday-dev/manageday/internal/authz"
	"github.com/manageday-dev/manageday/internal/cli/config"
	"github.com/manageday-dev/manageday/internal/models"
	"github.com/manageday-dev/manageday/internal/session"
)

// newTestDeps wires a deps bundle against in-memory storage and the given
// API server, the same shape newDeps builds for production.
func newTestDeps(t *testing.T, serverURL string) (*deps, *bytes.Buffer) {
	t.Helper()

	store := session.NewStore(session.NewMemoryBackend(), session.NewMemoryBackend())
	sess := session.NewContext(store)
	t.Cleanup(sess.Close)
	sess.Init()

	out := &bytes.Buffer{}
	return &deps{
		server: &config.Server{URL: serverURL, Alias: "test"},
		store:  store,
		sess:   sess,
		client: api.New(serverURL, store,
			api.WithSessionExpiredHook(expireSessionHook(sess, out))),
		out:    out,
	}, out
}

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			if r.FormValue("password") != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"T1","token_type":"Bearer"}`))
		case "/users/me":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":1,"email":"admin@x.com","full_name":"Admin","is_superuser":true,"is_active":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRunLogin_Success(t *testing.T) {
	server := newAuthServer(t)
	d, out := newTestDeps(t, server.URL)

	if err := runLogin(d, "admin@x.com", "secret", false); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if !d.sess.Authenticated() {
		t.Error("session should be authenticated after login")
	}
	if d.sess.Role() != authz.RoleAdmin {
		t.Errorf("expected admin role, got %s", d.sess.Role())
	}
	if !strings.Contains(out.String(), "✓ Login successful!") {
		t.Errorf("missing success message in output:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Role: admin") {
		t.Errorf("output should show the derived role:\n%s", out.String())
	}
}

func TestRunLogin_WrongPassword(t *testing.T) {
	server := newAuthServer(t)
	d, _ := newTestDeps(t, server.URL)

	err := runLogin(d, "admin@x.com", "wrong", false)
	if err == nil {
		t.Fatal("expected an error for wrong credentials")
	}
	if d.sess.Authenticated() {
		t.Error("session must stay unauthenticated")
	}
	if d.store.HasCredential() {
		t.Error("no credential should be stored")
	}
}

func TestRunLogin_MissingEmail(t *testing.T) {
	t.Setenv("MANAGEDAY_EMAIL", "")
	t.Setenv("MANAGEDAY_PASSWORD", "")
	d, _ := newTestDeps(t, "http://unused")

	if err := runLogin(d, "", "pw", false); err == nil {
		t.Fatal("expected an error when no email is available")
	}
}

func TestRunLogin_EnvCredentials(t *testing.T) {
	server := newAuthServer(t)
	t.Setenv("MANAGEDAY_EMAIL", "admin@x.com")
	t.Setenv("MANAGEDAY_PASSWORD", "secret")
	d, _ := newTestDeps(t, server.URL)

	if err := runLogin(d, "", "", false); err != nil {
		t.Fatalf("login via env credentials failed: %v", err)
	}
	if !d.sess.Authenticated() {
		t.Error("session should be authenticated")
	}
}

func TestRunLogout_Idempotent(t *testing.T) {
	server := newAuthServer(t)
	d, out := newTestDeps(t, server.URL)

	if err := runLogin(d, "admin@x.com", "secret", false); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := runLogout(d); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if err := runLogout(d); err != nil {
		t.Fatalf("second logout failed: %v", err)
	}

	if d.sess.Authenticated() || d.store.HasCredential() {
		t.Error("logout should leave an unauthenticated session with empty storage")
	}
	if strings.Count(out.String(), "✓ Logged out.") != 2 {
		t.Errorf("each logout should report success:\n%s", out.String())
	}
}

func TestSessionExpiryConvergesState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	d, out := newTestDeps(t, server.URL)
	if err := d.store.Persist(models.Credential{Token: "stale"}, nil, session.ScopeDurable); err != nil {
		t.Fatalf("persist failed: %v", err)
	}
	d.sess.Refresh()
	if !d.sess.Authenticated() {
		t.Fatal("precondition: session should be authenticated")
	}

	err := runProductsList(d, 0, 10, "")
	if !api.IsSessionExpired(err) {
		t.Fatalf("expected a session-expired error, got %v", err)
	}

	// The pipeline hook must settle both halves: storage and local state.
	if d.store.HasCredential() {
		t.Error("401 must clear the stored credential")
	}
	if d.sess.Authenticated() {
		t.Error("session state must converge to unauthenticated after a 401")
	}
	if d.sess.Role() != authz.RoleEmployee {
		t.Errorf("expired session should fall back to employee, got %s", d.sess.Role())
	}
	if !strings.Contains(out.String(), "manageday login") {
		t.Errorf("expected a re-login notice:\n%s", out.String())
	}
}

func TestRunWhoami_Unauthenticated(t *testing.T) {
	d, out := newTestDeps(t, "http://unused")

	if err := runWhoami(d, false); err != nil {
		t.Fatalf("whoami failed: %v", err)
	}
	if !strings.Contains(out.String(), "Not authenticated") {
		t.Errorf("expected a not-authenticated message:\n%s", out.String())
	}
}

func TestRunWhoami_UsesCachedIdentity(t *testing.T) {
	// No /users/me route: a cached identity must not trigger a fetch.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	d, out := newTestDeps(t, server.URL)
	d.sess.SetAuthenticated(true)
	d.sess.SetIdentity(&models.Identity{Email: "cached@x.com", Name: "Cached"})

	if err := runWhoami(d, false); err != nil {
		t.Fatalf("whoami failed: %v", err)
	}
	if !strings.Contains(out.String(), "cached@x.com") {
		t.Errorf("expected the cached identity in output:\n%s", out.String())
	}
}

func TestRunWhoami_Refresh(t *testing.T) {
	server := newAuthServer(t)
	d, out := newTestDeps(t, server.URL)
	if err := d.store.Persist(models.Credential{Token: "T1"}, nil, session.ScopeEphemeral); err != nil {
		t.Fatalf("persist failed: %v", err)
	}
	d.sess.SetAuthenticated(true)
	d.sess.SetIdentity(&models.Identity{Email: "stale@x.com"})

	if err := runWhoami(d, true); err != nil {
		t.Fatalf("whoami failed: %v", err)
	}
	if !strings.Contains(out.String(), "admin@x.com") {
		t.Errorf("refresh should show the fetched identity:\n%s", out.String())
	}
	if d.sess.Role() != authz.RoleAdmin {
		t.Errorf("refresh should re-derive the role, got %s", d.sess.Role())
	}
}

func TestRequireAdmin(t *testing.T) {
	d, _ := newTestDeps(t, "http://unused")

	if err := requireAdmin(d); err == nil {
		t.Error("unauthenticated session must be rejected")
	}

	d.sess.SetAuthenticated(true)
	d.sess.SetIdentity(&models.Identity{Email: "e@x.com"})
	if err := requireAdmin(d); err == nil {
		t.Error("employee role must be rejected")
	}

	d.sess.SetIdentity(&models.Identity{Email: "a@x.com", IsSuperuser: true})
	if err := requireAdmin(d); err != nil {
		t.Errorf("admin should pass: %v", err)
	}
}
