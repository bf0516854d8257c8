// Package controller implements the remote controller peer.
//
// The controller keeps a ledger of open cases keyed by incident anchor and
// answers each status packet with a disposition code. Gray-zone reports are
// watched for a fixed number of replies and then resolved; object-band
// reports are confirmed and resolved once the inspection time has elapsed.
// Run serves the peer over gRPC; the simulator calls Report in process.
package controller
