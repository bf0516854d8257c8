// Package simulation runs a monitoring session against an in-process
// controller on a virtual clock. A mission of hours completes in
// milliseconds, which makes it the tool for tuning transmit periods,
// latencies and controller policy against a recorded detection feed.
package simulation
