// Package output renders the user-facing console text: the startup
// banner, the configuration summary and colored status lines. Log output
// goes through internal/logger instead.
package output
