package remote

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/healthsync/internal/common"
	pb "github.com/dmitrijs2005/healthsync/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.DocumentStoreClient

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := c.AccessToken(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient connects lazily to endpointURL. Extra dial options are
// appended after the defaults (insecure transport, token interceptor).
func NewGRPCClient(endpointURL, accessToken string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewDocumentStoreClient(conn)
	return c, nil
}

func (c *GRPCClient) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *GRPCClient) SetAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = token
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) Write(ctx context.Context, path string, fields map[string]any) error {
	req, err := pb.EncodeDocument(path, fields)
	if err != nil {
		return err
	}
	if _, err := c.client.Write(ctx, req); err != nil {
		return c.mapError(err)
	}
	return nil
}

func (c *GRPCClient) Read(ctx context.Context, path string) (Document, error) {
	resp, err := c.client.Read(ctx, wrapperspb.String(path))
	if err != nil {
		return Document{}, c.mapError(err)
	}
	p, fields, err := pb.DecodeDocument(resp)
	if err != nil {
		return Document{}, err
	}
	return Document{Path: p, Fields: fields}, nil
}

func (c *GRPCClient) ReadCollection(ctx context.Context, path string) ([]Document, error) {
	resp, err := c.client.ReadCollection(ctx, wrapperspb.String(path))
	if err != nil {
		return nil, c.mapError(err)
	}
	docs := make([]Document, 0, len(resp.GetValues()))
	for _, v := range resp.GetValues() {
		p, fields, err := pb.DecodeDocument(v.GetStructValue())
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{Path: p, Fields: fields})
	}
	return docs, nil
}

func (c *GRPCClient) Delete(ctx context.Context, path string) error {
	if _, err := c.client.Delete(ctx, wrapperspb.String(path)); err != nil {
		return c.mapError(err)
	}
	return nil
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	resp, err := c.client.Ping(ctx, &emptypb.Empty{})
	if err != nil {
		return c.mapError(err)
	}
	if resp.GetValue() != pb.PingOK {
		return ErrUnavailable
	}
	return nil
}

func (c *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.NotFound:
		return ErrNotFound
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
