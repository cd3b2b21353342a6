// Package login authenticates accounts by email and password and turns the
// resolved profile into session claims.
package login
