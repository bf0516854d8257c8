// Package transport carries status packets from a monitoring session to the
// controller peer and delivers acknowledgments back on the session's event
// loop.
//
// Simulated delays both directions on a virtual loop and serializes packets
// through the wire format. Remote calls the peer over the network from a
// goroutine and posts the reply back to the loop, so handlers never run
// concurrently with ticks.
package transport
