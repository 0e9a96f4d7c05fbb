// Package repository contains data access logic separated from HTTP
// handlers. This file defines error values shared across the
// repositories so handlers can translate failures into transport
// status codes. Ownership failures are deliberately folded into the
// not-found errors: a caller probing someone else's bucket or fast
// learns nothing about whether it exists.
package repository

import "errors"

// ErrConflict is returned when an insert or update collides with an
// existing unique key, such as a second bucket for the same Hijri
// year or a second fast on the same date. Handlers should translate
// this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrInvalidCredentials is returned for every authentication
// mismatch: unknown email, wrong password, wrong or expired OTP
// code. The wording is generic on purpose so responses cannot be
// used to enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid or expired credentials")

// ErrAttemptsExhausted is returned once an OTP has absorbed its
// maximum of wrong guesses. Unlike other auth failures it carries a distinct,
// user-actionable meaning: stop guessing and request a new code.
var ErrAttemptsExhausted = errors.New("too many attempts, request a new code")

// ErrUnauthorized is returned when a refresh token is unknown,
// expired or already revoked. Handlers should translate this into an
// HTTP 401 response.
var ErrUnauthorized = errors.New("unauthorized")
