package transport

import (
	"context"
	"sync"

	"github.com/oshokin/auv-alarm/internal/logger"
	"github.com/oshokin/auv-alarm/internal/packet"
	"github.com/oshokin/auv-alarm/internal/scheduler"
)

// Poster runs handlers on the event loop.
type Poster interface {
	Post(fn scheduler.Handler)
}

// Remote calls a networked peer without blocking the event loop.
type Remote struct {
	// peer is usually a link.Client.
	peer Peer
	// loop receives acknowledgments.
	loop Poster
	// receiver gets acknowledgments.
	receiver Receiver
	// inflight tracks outstanding calls.
	inflight sync.WaitGroup
}

// NewRemote creates a transport that posts replies from peer onto loop.
func NewRemote(loop Poster, peer Peer) *Remote {
	return &Remote{
		peer: peer,
		loop: loop,
	}
}

// Attach sets the acknowledgment receiver.
func (t *Remote) Attach(r Receiver) {
	t.receiver = r
}

// Send starts the call and returns immediately. The call is bounded by ctx.
func (t *Remote) Send(ctx context.Context, p *packet.Packet) error {
	if t.receiver == nil {
		return errNotAttached
	}

	status := p.Clone()

	t.inflight.Go(func() {
		reply, err := t.peer.Report(ctx, status)
		if err != nil {
			logger.WarnKV(ctx, "Controller call failed", "sequence", status.Sequence, "error", err)

			return
		}

		if reply == nil || reply.Ack == nil {
			return
		}

		ack := reply.Ack
		t.loop.Post(func(ctx context.Context) {
			t.receiver.HandlePacket(ctx, ack)
		})
	})

	return nil
}

// Wait blocks until every outstanding call has finished.
func (t *Remote) Wait() {
	t.inflight.Wait()
}
