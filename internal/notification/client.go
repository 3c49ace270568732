package notification

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ErrNotDelivered is returned when the service answers success=false.
var ErrNotDelivered = errors.New("notification not delivered")

// Client calls the notification service.
type Client struct {
	conn *grpc.ClientConn
}

// Dial creates a client for addr. The connection is established lazily.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial notification service: %w", err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) SendNotification(ctx context.Context, loanApplicationID, recipientID int64, message string) error {
	req := &SendNotificationRequest{
		LoanApplicationID: loanApplicationID,
		RecipientID:       recipientID,
		Message:           message,
	}
	reply := new(SendNotificationReply)
	if err := c.conn.Invoke(ctx, SendNotificationMethod, req, reply, grpc.CallContentSubtype(CodecName)); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	if !reply.Success {
		return ErrNotDelivered
	}
	return nil
}

// Close releases the connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// LogNotifier stands in when no notification service is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier builds a notifier that only logs.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendNotification(_ context.Context, loanApplicationID, recipientID int64, message string) error {
	n.logger.Info("notification skipped; no notification service configured",
		zap.Int64("loan_application_id", loanApplicationID),
		zap.Int64("recipient_id", recipientID),
		zap.String("message", message),
	)
	return nil
}
