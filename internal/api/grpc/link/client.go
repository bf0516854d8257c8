package link

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/oshokin/auv-alarm/internal/config"
	"github.com/oshokin/auv-alarm/internal/packet"
)

// Client calls the link service of a controller.
type Client struct {
	// conn is the underlying gRPC connection to the controller.
	conn *grpc.ClientConn

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errPacketRequired is returned when Report is called without a packet.
	errPacketRequired = errors.New("status packet must be provided")
)

// Dial prepares a connection to the controller. The connection is
// established lazily on the first call.
// Note: this uses insecure transport credentials; the acoustic link is
// expected to run on a closed network.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("dial controller: %w", err)
	}

	client := &Client{
		conn:        conn,
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Report sends a status packet and returns the controller reply.
func (c *Client) Report(ctx context.Context, status *packet.Packet) (*packet.Reply, error) {
	if status == nil {
		return nil, errPacketRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	reply := new(packet.Reply)
	if err := c.conn.Invoke(callCtx, ReportMethod, status, reply); err != nil {
		return nil, fmt.Errorf("report status: %w", err)
	}

	return reply, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
