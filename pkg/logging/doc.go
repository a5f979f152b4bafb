// Package logging provides structured logging configuration for registrar.
//
// This package wraps log/slog so every component logs the same way. It
// supports configurable levels, text or JSON output, and an optional second
// sink that always receives JSON (for example a log file next to a terminal).
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//	logger.Info("server started", "port", 5000)
//
// # Request scope
//
// The HTTP layer stores a logger carrying the request trace id in the request
// context. Resolvers retrieve it with FromContext:
//
//	ctx = logging.WithLogger(ctx, logger.With("traceId", traceID))
//	logging.FromContext(ctx).Debug("resolving field", "path", path)
//
// # Integration
//
// Components accept a *slog.Logger in their constructor or via an option.
// If no logger is provided they use logging.Nop().
package logging
