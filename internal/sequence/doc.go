// Package sequence implements the staleness gate applied to inbound packets.
//
// The gate keeps the highest confirmed peer sequence number. With stale
// dropping enabled, packets at or below that watermark are rejected; every
// accepted packet moves the watermark to its own sequence number.
package sequence
