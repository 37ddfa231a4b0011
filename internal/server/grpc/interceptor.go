package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/teamkeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// loggingInterceptor logs every unary call. Errors that are not gRPC status
// errors are reported to the client only as common.ErrorInternal.
func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()

	resp, err := handler(ctx, req)
	err = toStatus(err)

	code := status.Code(err)
	args := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}
	switch {
	case code == codes.OK:
		s.logger.Debug(ctx, "request served", args...)
	case code == codes.Internal || code == codes.Unknown:
		s.logger.Error(ctx, "request failed", args...)
	default:
		s.logger.Info(ctx, "request rejected", args...)
	}

	return resp, err
}

// toStatus keeps status errors as they are and reports anything else
// without its details.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}
