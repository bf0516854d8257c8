// Package feed reads detector samples, one per line, from the onboard
// detection log.
//
// Line format:
//
//	frame_number/timestamp:ignored:/frame_size/byte_size/object_detected/edge_count
//
// The Reader owns an explicit cursor counting consumed lines. A malformed line
// is consumed and reported as ErrMalformedSample; an exhausted feed reports
// ErrEndOfFeed on every further call.
package feed
