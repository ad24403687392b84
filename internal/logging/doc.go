// Package logging provides structured logging for keylightctl.
//
// This package wraps zap logger with convenience functions for the logging
// patterns used throughout the tool. Because keylightctl is primarily a CLI
// whose stdout belongs to the user, logging is silent unless explicitly
// enabled.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (browse lines, state payloads)
//   - Info: Normal operations (discovery passes, state changes)
//   - Warn: Non-fatal issues (a failed poll pass, skipped records)
//   - Error: Fatal issues (startup failures)
//
// # Configuration
//
// Set KEYLIGHTCTL_LOG_LEVEL to enable output:
//
//	KEYLIGHTCTL_LOG_LEVEL=debug keylightctl scan
//
// or initialize explicitly at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// Log output goes to stderr in console format so it never mixes with
// command output.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
