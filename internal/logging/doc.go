// Package logging provides a simple leveled logging interface for the
// player shell daemon.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information (engine IPC traffic, refresh ticks)
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the daemon
//
// The log level is configured via the LOG_LEVEL environment variable, or
// forced to debug with DEBUG=1.
package logging
