// Package session is the composition root of vehicle monitoring.
//
// A Session reacts to two events delivered by the scheduler: the transmit
// tick, which reads a detector sample, classifies it, feeds the alarm state
// machine and sends a status packet; and the inbound packet, which passes the
// sequence gate before reaching the state machine. All state is owned by the
// session and mutated only from those handlers, on the scheduler goroutine.
package session
