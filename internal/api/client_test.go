package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/manageday-dev/manageday/internal/models"
	"github.com/manageday-dev/manageday/internal/session"
)

func newTestStore(t *testing.T, token string) *session.Store {
	t.Helper()
	store := session.NewStore(session.NewMemoryBackend(), session.NewMemoryBackend())
	if token != "" {
		cred := models.Credential{Token: token, TokenType: "Bearer"}
		if err := store.Persist(cred, nil, session.ScopeDurable); err != nil {
			t.Fatalf("failed to seed store: %v", err)
		}
	}
	return store
}

func TestClient_AttachesStoredCredential(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	store := newTestStore(t, "T1")
	client := New(server.URL, store)

	if _, err := client.Products(context.Background(), 0, 10, ""); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if gotAuth != "Bearer T1" {
		t.Errorf("expected Authorization 'Bearer T1', got %q", gotAuth)
	}
}

func TestClient_NoCredentialNoHeader(t *testing.T) {
	var gotAuth string
	var hasAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, hasAuth = r.Header["Authorization"]
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := New(server.URL, newTestStore(t, ""))

	if _, err := client.Health(context.Background()); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if hasAuth {
		t.Errorf("expected no Authorization header, got %q", gotAuth)
	}
}

func TestClient_UnauthorizedClearsSessionAndRunsHook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	store := newTestStore(t, "stale-token")
	var hookCalls atomic.Int32
	client := New(server.URL, store,
		WithSessionExpiredHook(func() { hookCalls.Add(1) }))

	_, err := client.Products(context.Background(), 0, 10, "")
	if !IsSessionExpired(err) {
		t.Fatalf("expected a session-expired error, got %v", err)
	}
	if store.HasCredential() {
		t.Error("401 must clear the stored credential")
	}
	if got := hookCalls.Load(); got != 1 {
		t.Errorf("expected the expiry hook to run exactly once, ran %d times", got)
	}
}

func TestClient_ConcurrentUnauthorizedConverges(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	store := newTestStore(t, "stale-token")
	client := New(server.URL, store)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.Products(context.Background(), 0, 10, "")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if !IsSessionExpired(err) {
			t.Errorf("call %d: expected session-expired, got %v", i, err)
		}
	}
	if store.HasCredential() {
		t.Error("store must converge to cleared regardless of interleaving")
	}
}

func TestClient_ValidationErrorLeavesSessionIntact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":[{"loc":["body","phone"],"msg":"required"}]}`))
	}))
	defer server.Close()

	store := newTestStore(t, "T1")
	client := New(server.URL, store)

	_, err := client.CreateProduct(context.Background(), models.Product{Name: "x"})
	if !IsValidation(err) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	fields := ValidationFields(err)
	if len(fields) != 1 || fields[0].Field != "phone" {
		t.Errorf("expected a phone field error, got %+v", fields)
	}
	if !store.HasCredential() {
		t.Error("a 422 must not touch the stored session")
	}
}

func TestClient_StatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"forbidden", http.StatusForbidden, IsForbidden},
		{"not found", http.StatusNotFound, IsNotFound},
		{"server error", http.StatusInternalServerError, IsServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			store := newTestStore(t, "T1")
			client := New(server.URL, store)

			_, err := client.Product(context.Background(), 1)
			if !tt.check(err) {
				t.Errorf("status %d misclassified: %v", tt.status, err)
			}
			if !store.HasCredential() {
				t.Errorf("status %d must not touch the session", tt.status)
			}
		})
	}
}

func TestClient_ConnectionFailureIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	store := newTestStore(t, "T1")
	client := New(server.URL, store)

	_, err := client.Health(context.Background())
	if !IsNetworkError(err) {
		t.Fatalf("expected a network error, got %v", err)
	}
	if !store.HasCredential() {
		t.Error("a transport failure must not touch the session")
	}
}

func TestClient_TimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	store := newTestStore(t, "T1")
	client := New(server.URL, store, WithTimeout(50*time.Millisecond))

	_, err := client.Health(context.Background())
	if !IsNetworkError(err) {
		t.Fatalf("expected a network error on timeout, got %v", err)
	}
	if !store.HasCredential() {
		t.Error("a timeout must not touch the session")
	}
}

func TestClient_CurrentUserRefreshesCachedIdentity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":5,"email":"a@x.com","is_superuser":true,"is_active":true}`))
	}))
	defer server.Close()

	store := newTestStore(t, "T1")
	client := New(server.URL, store)

	identity, err := client.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if identity.ID != 5 || !identity.IsSuperuser {
		t.Errorf("unexpected identity: %+v", identity)
	}

	_, cached, err := store.Read()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if cached == nil || cached.ID != 5 {
		t.Errorf("identity should be cached next to the token, got %+v", cached)
	}
}
