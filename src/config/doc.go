// Package config defines the configuration for a gust node.
//
// Regardless of how gust is started, directly from Go code or as a standalone
// process from the command line, it uses the Config object defined in this
// package to store and forward configuration options. Because the process's
// stdout belongs to the protocol, all logging built from a Config goes to
// stderr, and optionally to a file.
package config
