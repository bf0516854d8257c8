// Package vehicle runs a monitoring session in real time against a remote
// controller reached over gRPC.
package vehicle
