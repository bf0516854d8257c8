// Package scheduler is the discrete-event loop that drives a monitoring
// session.
//
// All handlers run on the goroutine that called Run, in non-decreasing due
// time order; events due at the same time run in scheduling order. A virtual
// loop jumps its clock from event to event and is used for simulation and
// tests. A wall-clock loop sleeps until the next event is due. Other
// goroutines hand work to the loop with Post.
package scheduler
