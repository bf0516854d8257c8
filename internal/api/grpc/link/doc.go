// Package link implements the gRPC transport between a vehicle and the
// controller peer.
//
// There are no generated stubs: the service descriptor is declared by hand
// and messages travel through a codec built on the packet wire format, so
// both sides must import this package to register it.
package link
