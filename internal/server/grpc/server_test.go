package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/client/remote"
	"github.com/dmitrijs2005/healthsync/internal/logging"
	"github.com/dmitrijs2005/healthsync/internal/server/auth"
	"github.com/dmitrijs2005/healthsync/internal/server/repositories/documents"
	"github.com/dmitrijs2005/healthsync/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) *GRPCServer {
	t.Helper()
	docs := services.NewDocumentService(documents.NewInMemoryRepository(), logging.Discard())
	return NewGRPCServer("127.0.0.1:0", logging.Discard(), docs, testSecret)
}

func token(t *testing.T, uid string) string {
	t.Helper()
	tok, err := auth.GenerateToken(uid, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return tok
}

// serve runs s on an in-process listener and returns a dialer for clients.
func serve(t *testing.T, s *GRPCServer) func(token string) *remote.GRPCClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	return func(tok string) *remote.GRPCClient {
		c, err := remote.NewGRPCClient("passthrough:///bufnet", tok,
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}))
		require.NoError(t, err)
		t.Cleanup(func() { _ = c.Close() })
		return c
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	docs := services.NewDocumentService(documents.NewInMemoryRepository(), logging.Discard())
	srv := NewGRPCServer("127.0.0.1:99999", logging.Discard(), docs, testSecret)

	require.Error(t, srv.Run(context.Background()))
}

func TestDocumentStore_RoundTrip(t *testing.T) {
	dial := serve(t, newTestServer(t))
	c := dial(token(t, "u1"))
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Write(ctx, remote.UserPath("u1"), map[string]any{"name": "Ada", "age": 36}))
	require.NoError(t, c.Write(ctx, remote.MealPath("u1", "m1"), map[string]any{"mealType": "lunch", "date": int64(1717236000000)}))
	require.NoError(t, c.Write(ctx, remote.FoodPath("u1", "m1", "f1"), map[string]any{"name": "rice", "tags": []any{"grain"}}))
	require.NoError(t, c.Write(ctx, remote.MealPath("u1", "m2"), map[string]any{"mealType": "dinner"}))

	doc, err := c.Read(ctx, remote.UserPath("u1"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ada", "age": float64(36)}, doc.Fields)

	meals, err := c.ReadCollection(ctx, remote.MealsPath("u1"))
	require.NoError(t, err)
	require.Len(t, meals, 2)
	assert.Equal(t, "m1", meals[0].ID())
	assert.Equal(t, float64(1717236000000), meals[0].Fields["date"])

	foods, err := c.ReadCollection(ctx, remote.FoodsPath("u1", "m1"))
	require.NoError(t, err)
	require.Len(t, foods, 1)
	assert.Equal(t, []any{"grain"}, foods[0].Fields["tags"])

	require.NoError(t, c.Delete(ctx, remote.MealPath("u1", "m1")))
	_, err = c.Read(ctx, remote.FoodPath("u1", "m1", "f1"))
	require.ErrorIs(t, err, remote.ErrNotFound)

	meals, err = c.ReadCollection(ctx, remote.MealsPath("u1"))
	require.NoError(t, err)
	require.Len(t, meals, 1)
}

func TestDocumentStore_Authorization(t *testing.T) {
	dial := serve(t, newTestServer(t))
	ctx := context.Background()

	owner := dial(token(t, "u1"))
	require.NoError(t, owner.Write(ctx, remote.UserPath("u1"), map[string]any{"name": "Ada"}))

	other := dial(token(t, "u2"))
	_, err := other.Read(ctx, remote.UserPath("u1"))
	require.ErrorIs(t, err, remote.ErrUnauthorized)
	require.ErrorIs(t, other.Write(ctx, remote.UserPath("u1"), nil), remote.ErrUnauthorized)
	require.ErrorIs(t, other.Delete(ctx, remote.UserPath("u1")), remote.ErrUnauthorized)

	anonymous := dial("")
	require.NoError(t, anonymous.Ping(ctx), "ping needs no token")
	_, err = anonymous.Read(ctx, remote.UserPath("u1"))
	require.ErrorIs(t, err, remote.ErrUnauthorized)

	forged, err := auth.GenerateToken("u1", []byte("other-secret"), time.Hour)
	require.NoError(t, err)
	_, err = dial(forged).Read(ctx, remote.UserPath("u1"))
	require.ErrorIs(t, err, remote.ErrUnauthorized)

	expired, err := auth.GenerateToken("u1", []byte(testSecret), -time.Minute)
	require.NoError(t, err)
	_, err = dial(expired).Read(ctx, remote.UserPath("u1"))
	require.ErrorIs(t, err, remote.ErrUnauthorized)
}

func TestDocumentStore_ErrorMapping(t *testing.T) {
	dial := serve(t, newTestServer(t))
	c := dial(token(t, "u1"))
	ctx := context.Background()

	_, err := c.Read(ctx, remote.UserPath("u1"))
	require.ErrorIs(t, err, remote.ErrNotFound)

	_, err = c.ReadCollection(ctx, remote.UserPath("u1"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, remote.ErrNotFound))
	assert.Contains(t, err.Error(), "InvalidArgument")
}
