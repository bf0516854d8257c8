// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and per-context level overrides,
//   - context-aware helpers (InfoKV, WarnKV, etc.).
//
// The vehicle session, the controller peer and the simulator receive a context
// and extract the logger from it, so every alarm transition is logged with the
// name of the component that produced it.
package logger
