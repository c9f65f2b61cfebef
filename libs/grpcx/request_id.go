package grpcx

import (
	"context"
	"strings"

	"github.com/md-rashed-zaman/meetings/libs/httpx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// RequestIDMetadataKey is httpx.RequestIDHeader in gRPC's lowercase metadata form.
var RequestIDMetadataKey = strings.ToLower(httpx.RequestIDHeader)

// requestID returns the caller's id or a fresh one, and echoes it in the response header.
func requestID(ctx context.Context) context.Context {
	var id string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(RequestIDMetadataKey); len(vals) > 0 && len(vals[0]) <= 128 {
			id = vals[0]
		}
	}
	if id == "" {
		id = httpx.NewRequestID()
	}
	_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDMetadataKey, id))
	return httpx.ContextWithRequestID(ctx, id)
}

// UnaryRequestID and StreamRequestID tag calls this server receives with a
// request id and echo it back. The only registered service is grpc.health.v1;
// ids are not forwarded to any outbound call.
func UnaryRequestID() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		return handler(requestID(ctx), req)
	}
}

func StreamRequestID() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		return handler(srv, &requestIDStream{ServerStream: ss, ctx: requestID(ss.Context())})
	}
}

type requestIDStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *requestIDStream) Context() context.Context { return s.ctx }
