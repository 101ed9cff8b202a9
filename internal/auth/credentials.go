// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package auth

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

// User is a locally configured account.
type User struct {
	ID             string
	Username       string
	CongregationID string

	// PasswordHash is a bcrypt hash. Plaintext passwords never leave the
	// config loader.
	PasswordHash string
}

// CredentialStore verifies username/password pairs against configured users.
type CredentialStore struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewCredentialStore creates a store from the configured users.
func NewCredentialStore(users []User) *CredentialStore {
	byName := make(map[string]User, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}
	return &CredentialStore{users: byName}
}

// Verify checks the password for the named user. The bcrypt comparison runs
// even for unknown usernames so response timing does not reveal which
// usernames exist.
func (s *CredentialStore) Verify(ctx context.Context, username, password string) (*User, error) {
	s.mu.RLock()
	user, ok := s.users[username]
	s.mu.RUnlock()

	hash := user.PasswordHash
	if !ok || hash == "" {
		// Burn comparable time against a fixed dummy hash.
		hash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(user.Username), []byte(username)) != 1 {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// HashPassword produces a bcrypt hash for storing in configuration.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// LoginLimiter rate-limits login attempts per client key (typically the
// remote IP) to slow brute forcing.
type LoginLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	clients  map[string]*loginClient
	stopChan chan struct{}
	stopOnce sync.Once
}

type loginClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginLimiter allows attempts per window with the given burst.
func NewLoginLimiter(attempts int, window time.Duration, burst int) *LoginLimiter {
	if attempts <= 0 {
		attempts = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	if burst <= 0 {
		burst = attempts
	}
	l := &LoginLimiter{
		limit:    rate.Every(window / time.Duration(attempts)),
		burst:    burst,
		clients:  make(map[string]*loginClient),
		stopChan: make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// Allow reports whether the client may attempt a login now.
func (l *LoginLimiter) Allow(clientKey string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[clientKey]
	if !ok {
		c = &loginClient{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[clientKey] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow()
}

// cleanup drops clients idle for more than an hour.
func (l *LoginLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.mu.Lock()
			cutoff := time.Now().Add(-time.Hour)
			for key, c := range l.clients {
				if c.lastSeen.Before(cutoff) {
					delete(l.clients, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Stop terminates the cleanup goroutine. Safe to call multiple times.
func (l *LoginLimiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopChan)
	})
}
