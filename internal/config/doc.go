// Package config loads and merges the application configuration from
// environment variables, command-line flags, an optional JSON file, and
// built-in defaults.
//
// Priority is fixed: environment variables win over flags, flags win over
// the JSON file, and defaults only fill fields no other source has set.
// The merged result is validated before use so that a server never starts
// without a token signing key or a database DSN.
package config
