// Package logging provides structured logging utilities for the mailtriage
// application.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (sender address anonymization)
//   - Consistent attribute naming across the codebase
//   - Logger adapter interface for flexibility
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithPhase(slog.Default(), "extract")
//	logger.Info("attachment processed",
//	    logging.Status(logging.StatusSuccess))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("email stored",
//	    logging.SenderHash(email.Sender))
//
// # Security Considerations
//
// Sender addresses are hashed to prevent PII leakage while allowing
// correlation, and tokens or API keys are never logged directly.
package logging
