// Package proto defines the DocumentStore gRPC service shared by the client
// and the server. Messages are protobuf well-known types, so no generated
// message code is needed:
//
//	Write          Struct{path, fields}  -> Empty
//	Read           StringValue(path)     -> Struct{path, fields}
//	ReadCollection StringValue(path)     -> ListValue[Struct{path, fields}]
//	Delete         StringValue(path)     -> Empty
//	Ping           Empty                 -> StringValue("OK")
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "healthsync.v1.DocumentStore"

const (
	DocumentStore_Write_FullMethodName          = "/healthsync.v1.DocumentStore/Write"
	DocumentStore_Read_FullMethodName           = "/healthsync.v1.DocumentStore/Read"
	DocumentStore_ReadCollection_FullMethodName = "/healthsync.v1.DocumentStore/ReadCollection"
	DocumentStore_Delete_FullMethodName         = "/healthsync.v1.DocumentStore/Delete"
	DocumentStore_Ping_FullMethodName           = "/healthsync.v1.DocumentStore/Ping"
)

// PingOK is the status returned by a healthy server.
const PingOK = "OK"

type DocumentStoreClient interface {
	Write(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Read(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	ReadCollection(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.ListValue, error)
	Delete(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
}

type documentStoreClient struct {
	cc grpc.ClientConnInterface
}

func NewDocumentStoreClient(cc grpc.ClientConnInterface) DocumentStoreClient {
	return &documentStoreClient{cc}
}

func (c *documentStoreClient) Write(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, DocumentStore_Write_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *documentStoreClient) Read(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, DocumentStore_Read_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *documentStoreClient) ReadCollection(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, DocumentStore_ReadCollection_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *documentStoreClient) Delete(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, DocumentStore_Delete_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *documentStoreClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, DocumentStore_Ping_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// DocumentStoreServer is the server API for the DocumentStore service.
// Implementations should embed UnimplementedDocumentStoreServer.
type DocumentStoreServer interface {
	Write(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	Read(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ReadCollection(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error)
	Delete(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	mustEmbedUnimplementedDocumentStoreServer()
}

type UnimplementedDocumentStoreServer struct{}

func (UnimplementedDocumentStoreServer) Write(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, errUnimplemented("Write")
}
func (UnimplementedDocumentStoreServer) Read(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, errUnimplemented("Read")
}
func (UnimplementedDocumentStoreServer) ReadCollection(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error) {
	return nil, errUnimplemented("ReadCollection")
}
func (UnimplementedDocumentStoreServer) Delete(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, errUnimplemented("Delete")
}
func (UnimplementedDocumentStoreServer) Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return nil, errUnimplemented("Ping")
}
func (UnimplementedDocumentStoreServer) mustEmbedUnimplementedDocumentStoreServer() {}

func RegisterDocumentStoreServer(s grpc.ServiceRegistrar, srv DocumentStoreServer) {
	s.RegisterService(&DocumentStore_ServiceDesc, srv)
}

func _DocumentStore_Write_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DocumentStoreServer).Write(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DocumentStore_Write_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DocumentStoreServer).Write(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _DocumentStore_Read_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DocumentStoreServer).Read(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DocumentStore_Read_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DocumentStoreServer).Read(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _DocumentStore_ReadCollection_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DocumentStoreServer).ReadCollection(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DocumentStore_ReadCollection_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DocumentStoreServer).ReadCollection(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _DocumentStore_Delete_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DocumentStoreServer).Delete(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DocumentStore_Delete_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DocumentStoreServer).Delete(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _DocumentStore_Ping_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DocumentStoreServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DocumentStore_Ping_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DocumentStoreServer).Ping(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

var DocumentStore_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DocumentStoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Write", Handler: _DocumentStore_Write_Handler},
		{MethodName: "Read", Handler: _DocumentStore_Read_Handler},
		{MethodName: "ReadCollection", Handler: _DocumentStore_ReadCollection_Handler},
		{MethodName: "Delete", Handler: _DocumentStore_Delete_Handler},
		{MethodName: "Ping", Handler: _DocumentStore_Ping_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "healthsync/v1/document_store.proto",
}
