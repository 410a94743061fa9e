// Package cli defines the formrelay command tree: "serve" runs the HTTP relay
// and its metrics listener, "version" prints build metadata.
package cli
