// Package logger builds the slog loggers used across the request lifecycle.
//
// Loggers write JSON and print two extra severities by name, [LevelNotice]
// and [LevelCritical]. The lifecycle logs a missing action that falls back to
// index at notice, and rerouting loops, failed error handling and panics at
// critical:
//
//	log := logger.New()
//	logger.Notice(ctx, log, "action not found, falling back to index")
//	logger.Critical(ctx, log, "request rerouted too many times")
//	// {"level":"CRITICAL","msg":"request rerouted too many times"}
//
// # Context Extractors
//
// A [ContextExtractor] pulls one attribute out of the context of every log
// call, so request-scoped values such as a request ID need not be passed by
// hand:
//
//	log := logger.New(middlewares.RequestIDExtractor())
//	log.InfoContext(r.Context(), "post created", slog.Int("id", 7))
//	// {"level":"INFO","msg":"post created","id":7,"request_id":"..."}
//
// [NewLogHandlerDecorator] applies extractors to any slog.Handler.
//
// # Sentry
//
// [NewWithSentry] writes to stdout and forwards entries at or above
// SentryConfig.MinLevel to Sentry. Without a DSN, or when the SDK fails to
// initialize, it logs to stdout only.
//
// Tests use [NewWithWriter] with a buffer, or [NewNope] to discard output.
package logger
