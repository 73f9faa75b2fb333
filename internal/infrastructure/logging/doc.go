// Package logging provides the structured logger shared by every component
// of the mock.
//
// It wraps log/slog with a JSON or text handler, a level that can be
// changed at runtime, and per-component child loggers:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr, discard
//
//	log := logging.New(cfg.Logging, version)
//	hubLog := log.Component("monitoring")
//	hubLog.Warn("evicting observer", "session_id", id, "error", err)
package logging
