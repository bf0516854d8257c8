package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/auv-alarm/internal/logger"
	"github.com/oshokin/auv-alarm/internal/packet"
	"github.com/oshokin/auv-alarm/internal/scheduler"
)

// Scheduler schedules delayed handlers.
type Scheduler interface {
	After(d time.Duration, fn scheduler.Handler) *scheduler.Timer
}

// Simulated is an in-process link with a fixed one-way latency.
type Simulated struct {
	// loop delays delivery in both directions.
	loop Scheduler
	// peer answers status packets.
	peer Peer
	// latency is the one-way delay.
	latency time.Duration
	// receiver gets acknowledgments.
	receiver Receiver
}

// NewSimulated creates a link to peer on loop.
func NewSimulated(loop Scheduler, peer Peer, latency time.Duration) *Simulated {
	return &Simulated{
		loop:    loop,
		peer:    peer,
		latency: latency,
	}
}

// Attach sets the acknowledgment receiver.
func (t *Simulated) Attach(r Receiver) {
	t.receiver = r
}

// Send encodes the packet and schedules its arrival at the peer.
func (t *Simulated) Send(_ context.Context, p *packet.Packet) error {
	if t.receiver == nil {
		return errNotAttached
	}

	frame, err := p.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode status packet: %w", err)
	}

	t.loop.After(t.latency, func(ctx context.Context) {
		t.arrive(ctx, frame)
	})

	return nil
}

// arrive runs at the peer side of the link.
func (t *Simulated) arrive(ctx context.Context, frame []byte) {
	status := new(packet.Packet)
	if err := status.UnmarshalBinary(frame); err != nil {
		logger.WarnKV(ctx, "Peer dropped undecodable status packet", "error", err)

		return
	}

	reply, err := t.peer.Report(ctx, status)
	if err != nil {
		logger.WarnKV(ctx, "Peer failed to handle status packet", "sequence", status.Sequence, "error", err)

		return
	}

	if reply == nil || reply.Ack == nil {
		return
	}

	frame, err = reply.MarshalBinary()
	if err != nil {
		logger.WarnKV(ctx, "Peer failed to encode reply", "error", err)

		return
	}

	t.loop.After(t.latency, func(ctx context.Context) {
		t.deliver(ctx, frame)
	})
}

// deliver runs at the vehicle side of the link.
func (t *Simulated) deliver(ctx context.Context, frame []byte) {
	reply := new(packet.Reply)
	if err := reply.UnmarshalBinary(frame); err != nil {
		logger.WarnKV(ctx, "Dropped undecodable acknowledgment", "error", err)

		return
	}

	if reply.Ack != nil {
		t.receiver.HandlePacket(ctx, reply.Ack)
	}
}
