// Package auth holds the process-local access token. The token lives only in
// memory: a restart forces re-authentication.
package auth

import "sync"

// Credentials is the single owner of the current access token. It is an
// explicit instance passed into the transport's construction, never a global,
// and no other component keeps a copy of the token.
type Credentials struct {
	mu    sync.Mutex
	token string
}

func NewCredentials() *Credentials {
	return &Credentials{}
}

// Set stores the token, replacing any previous one.
func (c *Credentials) Set(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Get returns the current token and whether one is held.
func (c *Credentials) Get() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.token != ""
}

// Clear drops the token, e.g. on logout or after a failed refresh.
func (c *Credentials) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}
