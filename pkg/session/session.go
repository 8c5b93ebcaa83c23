// Package session stores TypeDB bearer tokens between CLI invocations.
//
// Signing in costs a round trip and a password hash on the server, so the
// CLI keeps the token it receives in a [Store] and reuses it until it
// expires or the server rejects it. A session is identified by the server
// address and user name, so one machine can hold tokens for several
// servers.
//
// # Usage
//
//	store, err := session.NewFileStore("")  // ~/.config/typeviz/sessions/
//
//	sess, err := store.Get(ctx, session.ID(address, username))
//	if sess == nil {
//	    client, err := typedb.SignIn(ctx, address, username, password)
//	    sess = session.New(address, username, client.Token(), session.DefaultTTL)
//	    store.Set(ctx, sess)
//	}
package session

import (
	"context"
	"time"

	"github.com/matzehuels/typeviz/pkg/cache"
)

// DefaultTTL is how long a stored token is trusted. TypeDB expires tokens
// on its own schedule; a rejected token is dropped before its TTL.
const DefaultTTL = 30 * time.Minute

// Session is a bearer token for one user on one server.
type Session struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}

// ID returns the session id for a user on a server. It is a hash, so it is
// safe to use as a file name.
func ID(address, username string) string {
	return cache.Hash([]byte(address + "\x00" + username))[:32]
}

// New creates a session for token.
func New(address, username, token string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        ID(address, username),
		Address:   address,
		Username:  username,
		Token:     token,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}
