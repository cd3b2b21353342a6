// Package errors carries the error taxonomy shared by every service in
// inspection-idm.
//
// Services declare their user-facing failures as sentinel *Error values with
// the exact message a caller may see:
//
//	var ErrEmailTaken = errors.Conflict("account already exists")
//
// HTTP handlers never build status codes themselves. They hand the error to
// Write, which renders structured errors with the status derived from their
// code and turns everything else into a logged, generic 500.
package errors
