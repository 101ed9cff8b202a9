// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestCredentialStore(t *testing.T) *CredentialStore {
	t.Helper()
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	return NewCredentialStore([]User{{
		ID:             "user-1",
		Username:       "alice",
		CongregationID: "cong-1",
		PasswordHash:   hash,
	}})
}

func TestCredentialStore_Verify(t *testing.T) {
	store := newTestCredentialStore(t)

	user, err := store.Verify(context.Background(), "alice", "correct horse battery staple")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if user.ID != "user-1" || user.CongregationID != "cong-1" {
		t.Errorf("Verify() = %+v, want the configured user", user)
	}
}

func TestCredentialStore_VerifyRejections(t *testing.T) {
	store := newTestCredentialStore(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "incorrect"},
		{"unknown user", "mallory", "correct horse battery staple"},
		{"empty password", "alice", ""},
		{"empty username", "", "correct horse battery staple"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Verify(context.Background(), tt.username, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Verify() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestLoginLimiter_Allow(t *testing.T) {
	limiter := NewLoginLimiter(3, time.Minute, 3)
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		if !limiter.Allow("10.0.0.1") {
			t.Fatalf("attempt %d denied within burst", i)
		}
	}
	if limiter.Allow("10.0.0.1") {
		t.Error("attempt beyond burst was allowed")
	}

	// Other clients are unaffected.
	if !limiter.Allow("10.0.0.2") {
		t.Error("a different client was denied")
	}
}

func TestLoginLimiter_StopIsIdempotent(t *testing.T) {
	limiter := NewLoginLimiter(3, time.Minute, 3)
	limiter.Stop()
	limiter.Stop()
}
