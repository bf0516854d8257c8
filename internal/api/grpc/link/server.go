package link

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/auv-alarm/internal/packet"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	Report(ctx context.Context, status *packet.Packet) (*packet.Reply, error)
}

// Server implements LinkServer on top of a Service.
type Server struct {
	// service provides the controller logic.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// Report forwards a status packet to the service.
func (s *Server) Report(ctx context.Context, req *packet.Packet) (*packet.Reply, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "status packet is required")
	}

	reply, err := s.service.Report(ctx, req)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to process status packet")
	}

	if reply == nil {
		reply = new(packet.Reply)
	}

	return reply, nil
}
