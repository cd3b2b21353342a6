// Package utils holds small helpers shared by the HTTP handlers.
package utils
