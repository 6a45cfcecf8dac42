// Package logging sets up the structured logger shared by the trellotodo
// binaries.
//
// Every record goes to an append-only log file and to stdout, in slog's
// text format (time, level, message, then key=value attributes). The
// attribute helpers keep key names consistent across packages:
//
//	logger.Info("card added", logging.List("ToDo"), logging.Title(title))
//	logger.Error("reconciliation failed", logging.Err(err))
package logging
