package client

import (
	"sync"

	"github.com/layer-3/walletauth/core"
)

// Update is a partial session view. Nil fields keep their current value.
type Update struct {
	Address       *string `json:"address,omitempty"`
	Authenticated *bool   `json:"authenticated,omitempty"`
	TempNonce     *string `json:"tempNonce,omitempty"`
	TempAddress   *string `json:"tempAddress,omitempty"`
}

// SessionCache mirrors the last session state the server reported.
// It is for display only and never decides access.
type SessionCache struct {
	mu          sync.RWMutex
	state       core.Session
	subscribers map[int]func(core.Session)
	nextID      int
}

// NewSessionCache returns a cache holding the default session
func NewSessionCache() *SessionCache {
	return &SessionCache{
		state:       *core.DefaultSession(),
		subscribers: make(map[int]func(core.Session)),
	}
}

// Snapshot returns a copy of the cached state
func (c *SessionCache) Snapshot() core.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Merge overlays the set fields of u onto the cached state
func (c *SessionCache) Merge(u Update) core.Session {
	c.mu.Lock()
	if u.Address != nil {
		c.state.Address = *u.Address
	}
	if u.Authenticated != nil {
		c.state.Authenticated = *u.Authenticated
	}
	if u.TempNonce != nil {
		c.state.TempNonce = *u.TempNonce
	}
	if u.TempAddress != nil {
		c.state.TempAddress = *u.TempAddress
	}
	state, subs := c.state, c.listeners()
	c.mu.Unlock()

	notify(subs, state)
	return state
}

// Replace sets the cached state wholesale
func (c *SessionCache) Replace(s core.Session) {
	c.mu.Lock()
	c.state = s.Public()
	state, subs := c.state, c.listeners()
	c.mu.Unlock()

	notify(subs, state)
}

// Reset returns the cache to the default session
func (c *SessionCache) Reset() {
	c.Replace(*core.DefaultSession())
}

// Subscribe registers fn to run after every change. The returned func removes it.
func (c *SessionCache) Subscribe(fn func(core.Session)) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			c.mu.Unlock()
		})
	}
}

// listeners must be called with c.mu held
func (c *SessionCache) listeners() []func(core.Session) {
	subs := make([]func(core.Session), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(core.Session), state core.Session) {
	for _, fn := range subs {
		fn(state)
	}
}

// UpdateFrom turns a full session view into an update setting every field
func UpdateFrom(s core.Session) Update {
	return Update{
		Address:       &s.Address,
		Authenticated: &s.Authenticated,
		TempNonce:     &s.TempNonce,
		TempAddress:   &s.TempAddress,
	}
}
