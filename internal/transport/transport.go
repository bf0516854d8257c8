package transport

import (
	"context"
	"errors"

	"github.com/oshokin/auv-alarm/internal/packet"
)

// Peer answers status packets.
type Peer interface {
	Report(ctx context.Context, status *packet.Packet) (*packet.Reply, error)
}

// Receiver consumes acknowledgments.
type Receiver interface {
	HandlePacket(ctx context.Context, p *packet.Packet)
}

// errNotAttached is returned by Send before a receiver is attached.
var errNotAttached = errors.New("transport has no receiver attached")
