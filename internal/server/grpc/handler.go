package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/healthsync/internal/common"
	pb "github.com/dmitrijs2005/healthsync/internal/proto"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func (s *GRPCServer) Write(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	uid, _ := UserIDFromContext(ctx)

	path, fields, err := pb.DecodeDocument(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := s.documents.Write(ctx, uid, path, fields); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) Read(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	uid, _ := UserIDFromContext(ctx)

	doc, err := s.documents.Read(ctx, uid, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	out, err := pb.EncodeDocument(doc.Path, doc.Fields)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return out, nil
}

func (s *GRPCServer) ReadCollection(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	uid, _ := UserIDFromContext(ctx)

	docs, err := s.documents.ReadCollection(ctx, uid, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	out := make([]*structpb.Struct, 0, len(docs))
	for _, d := range docs {
		st, err := pb.EncodeDocument(d.Path, d.Fields)
		if err != nil {
			return nil, s.toStatus(ctx, err)
		}
		out = append(out, st)
	}
	return pb.EncodeDocuments(out), nil
}

func (s *GRPCServer) Delete(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	uid, _ := UserIDFromContext(ctx)

	if err := s.documents.Delete(ctx, uid, req.GetValue()); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(pb.PingOK), nil
}

// toStatus maps service errors onto gRPC codes. Unknown errors are logged
// and reported as Internal without their details.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrInvalidPath):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
