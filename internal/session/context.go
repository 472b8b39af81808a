package session

import (
	"sync"

	"github.com/manageday-dev/manageday/internal/authz"
	"github.com/manageday-dev/manageday/internal/models"
)

// State is the process-wide session snapshot exposed to collaborators.
// Role is always derived from Identity; Loading is true until Init resolves.
type State struct {
	Authenticated bool
	Role          authz.Role
	Identity      *models.Identity
	Loading       bool
}

// Context owns the reactive session state. It is constructed around a Store
// rather than living as a package-level singleton, so collaborators receive
// it explicitly and tests can run isolated instances.
type Context struct {
	store *Store

	mu    sync.RWMutex
	state State

	subMu     sync.Mutex
	subs      map[int]func(State)
	next      int
	stopWatch func()
}

// NewContext returns a Context in the loading state. Call Init to resolve
// it against the store and start observing external storage changes.
func NewContext(store *Store) *Context {
	return &Context{
		store: store,
		state: State{Role: authz.RoleEmployee, Loading: true},
		subs:  map[int]func(State){},
	}
}

// Init resolves the session from the store. A present credential is treated
// as presumptively valid; a missing or unparsable cached identity leaves the
// session authenticated with a nil identity until a protected request
// repopulates it. A store that cannot be read at all forces a logout: a
// token that cannot be associated with any identity is treated as invalid.
//
// Init also subscribes to the store's external-change signal, so a logout
// performed by another context flips this one to unauthenticated without a
// restart. Repeated calls re-resolve state without stacking subscriptions.
func (c *Context) Init() {
	cred, identity, err := c.store.Read()
	if err != nil {
		c.Logout()
		return
	}

	c.mu.Lock()
	c.state = State{
		Authenticated: cred != nil,
		Identity:      identity,
		Role:          authz.RoleOf(identity),
		Loading:       false,
	}
	state := c.state
	c.mu.Unlock()

	c.subMu.Lock()
	if c.stopWatch == nil {
		c.stopWatch = c.store.Notify(c.onExternalChange)
	}
	c.subMu.Unlock()

	c.publish(state)
}

// Refresh re-runs initialization against the current store contents.
func (c *Context) Refresh() {
	c.Init()
}

// Close stops observing external storage changes.
func (c *Context) Close() {
	c.subMu.Lock()
	stop := c.stopWatch
	c.stopWatch = nil
	c.subMu.Unlock()
	if stop != nil {
		stop()
	}
}

// onExternalChange converges local state with a storage mutation performed
// by another context. The handling is idempotent: every context reaches the
// same terminal state regardless of delivery order.
func (c *Context) onExternalChange(key, newValue string) {
	switch key {
	case KeyToken:
		c.mu.Lock()
		if newValue == "" {
			c.state.Authenticated = false
			c.state.Identity = nil
			c.state.Role = authz.RoleEmployee
		} else {
			c.state.Authenticated = true
		}
		state := c.state
		c.mu.Unlock()
		c.publish(state)
	case KeyIdentity:
		identity, err := models.ParseIdentity(newValue)
		if err != nil {
			return
		}
		c.mu.Lock()
		c.state.Identity = identity
		c.state.Role = authz.RoleOf(identity)
		state := c.state
		c.mu.Unlock()
		c.publish(state)
	}
}

// State returns a snapshot of the current session state.
func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Authenticated reports whether the session currently holds a credential.
func (c *Context) Authenticated() bool {
	return c.State().Authenticated
}

// Role returns the current derived role.
func (c *Context) Role() authz.Role {
	return c.State().Role
}

// Identity returns the current identity, nil when unresolved.
func (c *Context) Identity() *models.Identity {
	return c.State().Identity
}

// Loading reports whether initialization is still pending.
func (c *Context) Loading() bool {
	return c.State().Loading
}

// SetAuthenticated overrides the authenticated flag.
func (c *Context) SetAuthenticated(authenticated bool) {
	c.mu.Lock()
	c.state.Authenticated = authenticated
	state := c.state
	c.mu.Unlock()
	c.publish(state)
}

// SetIdentity replaces the identity and re-derives the role from it; no
// caller can set a role that disagrees with the identity this way.
func (c *Context) SetIdentity(identity *models.Identity) {
	c.mu.Lock()
	c.state.Identity = identity
	c.state.Role = authz.RoleOf(identity)
	state := c.state
	c.mu.Unlock()
	c.publish(state)
}

// SetRole overrides the role directly. Reserved for the degraded login
// path, where no identity could be fetched and the least-privileged role
// is assumed.
func (c *Context) SetRole(role authz.Role) {
	c.mu.Lock()
	c.state.Role = role
	state := c.state
	c.mu.Unlock()
	c.publish(state)
}

// Logout clears both storage scopes and resets local state. Calling it
// repeatedly leaves the same terminal state.
func (c *Context) Logout() {
	_ = c.store.Clear()

	c.mu.Lock()
	c.state = State{
		Authenticated: false,
		Identity:      nil,
		Role:          authz.RoleEmployee,
		Loading:       false,
	}
	state := c.state
	c.mu.Unlock()
	c.publish(state)
}

// Subscribe registers fn to run on every state change. The returned
// function cancels the subscription.
func (c *Context) Subscribe(fn func(State)) (cancel func()) {
	c.subMu.Lock()
	id := c.next
	c.next++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Context) publish(state State) {
	c.subMu.Lock()
	fns := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
