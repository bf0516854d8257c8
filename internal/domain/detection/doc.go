// Package detection defines the onboard detector reading consumed once per
// transmit tick.
package detection
