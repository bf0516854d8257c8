package link

import (
	"context"

	"google.golang.org/grpc"

	"github.com/oshokin/auv-alarm/internal/packet"
)

// ReportMethod is the full method name of the Report call.
const ReportMethod = "/auvalarm.link.v1.Link/Report"

// LinkServer is the server API of the link service.
//
//nolint:revive // Mirrors the naming of generated gRPC server interfaces.
type LinkServer interface {
	Report(ctx context.Context, status *packet.Packet) (*packet.Reply, error)
}

// ServiceDesc describes the link service for grpc.ServiceRegistrar.
//
//nolint:gochecknoglobals // Service descriptors are package-level by convention.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "auvalarm.link.v1.Link",
	HandlerType: (*LinkServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Report",
			Handler:    reportHandler,
		},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterLinkServer registers srv on the registrar.
func RegisterLinkServer(s grpc.ServiceRegistrar, srv LinkServer) {
	s.RegisterService(&ServiceDesc, srv)
}

//nolint:revive // Signature fixed by grpc.MethodHandler.
func reportHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(packet.Packet)
	if err := dec(in); err != nil {
		return nil, err
	}

	server, _ := srv.(LinkServer)
	if interceptor == nil {
		return server.Report(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ReportMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		status, _ := req.(*packet.Packet)

		return server.Report(ctx, status)
	}

	return interceptor(ctx, in, info, handler)
}
