// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/lectern-app/lectern/internal/authz"
)

// Message keys returned in error responses. Clients localize these;
// the accompanying message is a fallback for clients that do not.
const (
	KeyInvalidPayload       = "errors.invalidPayload"
	KeyValidationFailed     = "errors.validationFailed"
	KeyInvalidCredentials   = "errors.invalidCredentials"
	KeyTooManyLoginAttempts = "errors.tooManyLoginAttempts"
	KeyInternal             = "errors.internal"

	KeyPublisherIDRequired = "errors.publisherIdRequired"
	KeyPublisherNotFound   = "errors.publisherNotFound"
	KeySpeakerIDRequired   = "errors.speakerIdRequired"
	KeySpeakerNotFound     = "errors.speakerNotFound"
	KeyExceptionIDRequired = "errors.exceptionIdRequired"
	KeyExceptionNotFound   = "errors.exceptionNotFound"
)

// fallbackMessages maps each key to its untranslated message.
var fallbackMessages = map[string]string{
	KeyInvalidPayload:       "request payload is invalid",
	KeyValidationFailed:     "request payload failed validation",
	KeyInvalidCredentials:   "invalid username or password",
	KeyTooManyLoginAttempts: "too many login attempts",
	KeyInternal:             "internal server error",

	KeyPublisherIDRequired: "publisher id is required",
	KeyPublisherNotFound:   "publisher not found",
	KeySpeakerIDRequired:   "speaker id is required",
	KeySpeakerNotFound:     "speaker not found",
	KeyExceptionIDRequired: "meeting exception id is required",
	KeyExceptionNotFound:   "meeting exception not found",

	authz.MessageKeyLoginRequired:           "access denied",
	authz.MessageKeyInsufficientPermissions: "access denied",
}

// errorResponse is the wire-level error envelope. It matches the shape
// written by the authorization guard so clients see one error format.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// respondError writes the structured error envelope for the key.
func respondError(w http.ResponseWriter, status int, key string) {
	message, ok := fallbackMessages[key]
	if !ok {
		message = "request failed"
	}
	writeJSON(w, status, errorResponse{Error: errorBody{Key: key, Message: message}})
}

// respondDenied maps a guard denial to its HTTP form: 401 without a
// principal, 403 with one, each carrying only the localizable key.
func respondDenied(w http.ResponseWriter, err error) {
	status := http.StatusUnauthorized
	key := authz.MessageKeyLoginRequired

	var denied *authz.DeniedError
	if errors.As(err, &denied) {
		key = denied.MessageKey
		if denied.Authenticated {
			status = http.StatusForbidden
		}
	}
	respondError(w, status, key)
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // nothing left to do if the response writer fails
	json.NewEncoder(w).Encode(v)
}
