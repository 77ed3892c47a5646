// Package log provides structured protocol logging for the data plane.
//
// This package defines the Logger interface and Event types for capturing
// lifecycle events: inbound requests, outbound control-plane pushes, state
// transitions, and errors. It is separate from operational logging (slog) -
// protocol capture provides a complete machine-readable event trace for
// debugging a device deployment after the fact.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("/var/log/sdn/device.dlog")
//
//	// Both: use MultiLogger
//	cfg.ProtocolLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    log.NewFileLogger("/var/log/sdn/device.dlog"),
//	)
//
// # File Format
//
// Log files use CBOR encoding with the .dlog extension. The sdn-log CLI
// tool provides viewing and statistics.
package log
