// Package logging provides structured logging for kestrel agent sessions.
//
// It wraps Go's log/slog to provide JSON-formatted logs with attribute
// propagation, designed to let an operator troubleshoot a dispatched agent
// after the fact via structured, filterable logs.
//
// # Basic usage
//
//	logger, err := logging.NewLogger(agentsLogDir, sessionID, "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("dispatched", "issue", 42)
//	logger.Warn("pane capture empty", "session", sessionID)
//
// # Attribute propagation
//
//	sessionLogger := logger.WithSession(sessionID)
//	phaseLogger := sessionLogger.WithPhase("supervisor")
//	phaseLogger.Info("transitioned", "from", "Running", "to", "Awaiting")
//
// # Rotation
//
// NewLogger backs every session-scoped log file with a RotatingWriter
// (DefaultRotationConfig) so a long-running dispatch doesn't grow an
// unbounded log file. A caller that wants different rotation limits can
// construct one directly:
//
//	rw, err := logging.NewRotatingWriter(path, logging.RotationConfig{MaxSizeMB: 50, MaxBackups: 5})
//
// # Aggregation
//
//	entries, err := logging.AggregateLogs(agentsLogDir, sessionID)
//	filtered := logging.FilterLogs(entries, logging.LogFilter{Level: "WARN"})
//	logging.ExportLogEntries(filtered, "errors.json", "json")
package logging
