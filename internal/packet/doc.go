// Package packet defines the status/acknowledgment packet exchanged between
// the vehicle and the controller peer, and its binary codec.
//
// Packets are encoded in protobuf wire format with protowire. Coordinates are
// written as fixed32 words so an anchor survives encode/decode bit-for-bit.
package packet
