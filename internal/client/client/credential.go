package client

import "sync"

// Credential holds the bearer token shared between the session and the
// gateway. The gateway reads it once per request; only the session
// writes it.
type Credential struct {
	mu    sync.RWMutex
	token string
}

func (c *Credential) Set(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Credential) Clear() { c.Set("") }

// Token returns the current token, or "" when none is set.
func (c *Credential) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}
