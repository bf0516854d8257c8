package transport

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/auv-alarm/internal/packet"
	"github.com/oshokin/auv-alarm/internal/scheduler"
)

var errTestPeer = errors.New("test peer error")

// echoPeer acknowledges every packet with a positive magnitude using code 0.
type echoPeer struct {
	mu       sync.Mutex
	received []*packet.Packet
	err      error
}

func (p *echoPeer) Report(_ context.Context, status *packet.Packet) (*packet.Reply, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.received = append(p.received, status)
	if p.err != nil {
		return nil, p.err
	}

	if status.Error <= 0 {
		return &packet.Reply{}, nil
	}

	ack := status.Clone()
	ack.Error = 0

	return &packet.Reply{Ack: ack}, nil
}

// timedReceiver records acknowledgments with their loop arrival time.
type timedReceiver struct {
	loop *scheduler.Loop
	at   []time.Duration
	acks []*packet.Packet
}

func (r *timedReceiver) HandlePacket(_ context.Context, p *packet.Packet) {
	r.at = append(r.at, r.loop.Now())
	r.acks = append(r.acks, p)
}

// TestSimulated_RoundTripLatency checks both legs are delayed and only acknowledgments return.
func TestSimulated_RoundTripLatency(t *testing.T) {
	t.Parallel()

	var (
		loop = scheduler.NewVirtual(0)
		peer = new(echoPeer)
		rx   = &timedReceiver{loop: loop}
		link = NewSimulated(loop, peer, 2*time.Second)
	)

	require.ErrorIs(t, link.Send(context.Background(), new(packet.Packet)), errNotAttached)

	link.Attach(rx)

	loop.After(10*time.Second, func(ctx context.Context) {
		require.NoError(t, link.Send(ctx, &packet.Packet{Sequence: 1, X: 4.5, Error: 0.5, SentAt: 10 * time.Second}))
		require.NoError(t, link.Send(ctx, &packet.Packet{Sequence: 2}))
	})

	require.NoError(t, loop.Run(context.Background()))

	require.Len(t, peer.received, 2)
	require.Equal(t, []time.Duration{14 * time.Second}, rx.at)
	require.Equal(t, uint16(1), rx.acks[0].Sequence)
	require.InDelta(t, 4.5, rx.acks[0].X, 0)
	require.Equal(t, 10*time.Second, rx.acks[0].SentAt)
}

// TestSimulated_PeerErrorDropsReply verifies a failing peer produces no delivery.
func TestSimulated_PeerErrorDropsReply(t *testing.T) {
	t.Parallel()

	var (
		loop = scheduler.NewVirtual(0)
		rx   = &timedReceiver{loop: loop}
		link = NewSimulated(loop, &echoPeer{err: errTestPeer}, time.Second)
	)

	link.Attach(rx)
	require.NoError(t, link.Send(context.Background(), &packet.Packet{Error: 1}))
	require.NoError(t, loop.Run(context.Background()))
	require.Empty(t, rx.acks)
}

// queuePoster collects posted handlers for manual execution.
type queuePoster struct {
	mu       sync.Mutex
	handlers []scheduler.Handler
}

func (q *queuePoster) Post(fn scheduler.Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers = append(q.handlers, fn)
}

// collectReceiver records acknowledgments.
type collectReceiver struct {
	acks []*packet.Packet
}

func (r *collectReceiver) HandlePacket(_ context.Context, p *packet.Packet) {
	r.acks = append(r.acks, p)
}

// TestRemote_PostsReplies ensures replies are handed to the loop rather than delivered directly.
func TestRemote_PostsReplies(t *testing.T) {
	t.Parallel()

	var (
		poster = new(queuePoster)
		peer   = new(echoPeer)
		rx     = new(collectReceiver)
		remote = NewRemote(poster, peer)
	)

	require.ErrorIs(t, remote.Send(context.Background(), new(packet.Packet)), errNotAttached)

	remote.Attach(rx)

	sent := &packet.Packet{Sequence: 3, Error: 1.5}
	require.NoError(t, remote.Send(context.Background(), sent))
	require.NoError(t, remote.Send(context.Background(), &packet.Packet{Sequence: 4}))

	// The caller may reuse its packet once Send returns.
	sent.Sequence = 99

	remote.Wait()

	require.Empty(t, rx.acks)
	require.Len(t, poster.handlers, 1)

	poster.handlers[0](context.Background())

	require.Len(t, rx.acks, 1)
	require.Equal(t, uint16(3), rx.acks[0].Sequence)
}

// TestRemote_PeerError verifies call failures post nothing.
func TestRemote_PeerError(t *testing.T) {
	t.Parallel()

	var (
		poster = new(queuePoster)
		remote = NewRemote(poster, &echoPeer{err: errTestPeer})
	)

	remote.Attach(new(collectReceiver))
	require.NoError(t, remote.Send(context.Background(), &packet.Packet{Error: 1}))
	remote.Wait()
	require.Empty(t, poster.handlers)
}
