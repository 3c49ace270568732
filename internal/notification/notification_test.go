package notification

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type recordingServer struct {
	got     []*SendNotificationRequest
	success bool
}

func (s *recordingServer) SendNotification(_ context.Context, req *SendNotificationRequest) (*SendNotificationReply, error) {
	s.got = append(s.got, req)
	return &SendNotificationReply{Success: s.success}, nil
}

func startServer(t *testing.T, impl NotificationServer) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterNotificationServer(srv, impl)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	client, err := Dial("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestClientSendsJSONRequest(t *testing.T) {
	impl := &recordingServer{success: true}
	client := startServer(t, impl)

	require.NoError(t, client.SendNotification(testContext(t), 10, 4, "approved"))
	require.Len(t, impl.got, 1)
	require.Equal(t, SendNotificationRequest{LoanApplicationID: 10, RecipientID: 4, Message: "approved"}, *impl.got[0])
}

func TestClientReportsUndelivered(t *testing.T) {
	client := startServer(t, &recordingServer{success: false})
	require.ErrorIs(t, client.SendNotification(testContext(t), 10, 4, "approved"), ErrNotDelivered)
}

func TestLoggingServerValidates(t *testing.T) {
	client := startServer(t, NewLoggingServer(zap.NewNop()))

	require.NoError(t, client.SendNotification(testContext(t), 1, 2, "hello"))

	err := client.SendNotification(testContext(t), 0, 2, "hello")
	require.Error(t, err)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	err = client.SendNotification(testContext(t), 1, 2, "  ")
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestLogNotifierNeverFails(t *testing.T) {
	require.NoError(t, NewLogNotifier(zap.NewNop()).SendNotification(context.Background(), 1, 2, "x"))
}
