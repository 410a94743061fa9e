// Package apiresponses provides the standardized JSON response helpers used by
// the form-relay HTTP handlers.
package apiresponses
