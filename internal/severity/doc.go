// Package severity turns a detector reading into an error magnitude and a
// suggested alarm level.
//
// Classify is pure: it owns no state and performs no I/O. Whether a detection
// should be written to the incident log is returned to the caller.
package severity
