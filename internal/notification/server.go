package notification

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LoggingServer accepts every well-formed notification and logs it.
type LoggingServer struct {
	logger *zap.Logger
}

// NewLoggingServer builds the server.
func NewLoggingServer(logger *zap.Logger) *LoggingServer {
	return &LoggingServer{logger: logger}
}

func (s *LoggingServer) SendNotification(_ context.Context, req *SendNotificationRequest) (*SendNotificationReply, error) {
	if req.LoanApplicationID <= 0 || req.RecipientID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "loanApplicationId and recipientId are required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, status.Error(codes.InvalidArgument, "message is required")
	}

	s.logger.Info("notification delivered",
		zap.Int64("loan_application_id", req.LoanApplicationID),
		zap.Int64("recipient_id", req.RecipientID),
		zap.String("message", req.Message),
	)
	return &SendNotificationReply{Success: true}, nil
}
