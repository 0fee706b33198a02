// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different
// environments (development vs production) and integrates with the
// Fiber web framework.
//
// The WithRayID helper extracts the request RayID from a Fiber context
// and attaches it to the log entry so that all logs belonging to one
// request can be correlated.
package logger
