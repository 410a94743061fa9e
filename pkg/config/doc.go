// Package config builds the immutable form-relay configuration from the process
// environment and an optional dotenv file, applies defaults and validates it.
package config
