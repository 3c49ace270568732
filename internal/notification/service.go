// Package notification carries loan decisions to the notification service
// over gRPC. Messages are JSON-encoded using the "json" content-subtype.
package notification

import (
	"context"

	"google.golang.org/grpc"
)

const (
	ServiceName            = "loanapp.notification.v1.NotificationService"
	SendNotificationMethod = "/" + ServiceName + "/SendNotification"
)

// SendNotificationRequest asks the service to notify a user about an application.
type SendNotificationRequest struct {
	LoanApplicationID int64  `json:"loanApplicationId"`
	RecipientID       int64  `json:"recipientId"`
	Message           string `json:"message"`
}

// SendNotificationReply reports whether the notification was accepted.
type SendNotificationReply struct {
	Success bool `json:"success"`
}

// NotificationServer is implemented by notification backends.
type NotificationServer interface {
	SendNotification(ctx context.Context, req *SendNotificationRequest) (*SendNotificationReply, error)
}

// RegisterNotificationServer attaches srv to a gRPC server.
func RegisterNotificationServer(s grpc.ServiceRegistrar, srv NotificationServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*NotificationServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SendNotification",
			Handler:    sendNotificationHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "loanapp/notification/v1",
}

func sendNotificationHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SendNotificationRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NotificationServer).SendNotification(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SendNotificationMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(NotificationServer).SendNotification(ctx, req.(*SendNotificationRequest))
	}
	return interceptor(ctx, in, info, handler)
}
