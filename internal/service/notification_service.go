package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/loan-service/internal/config"
	"github.com/spec-kit/loan-service/internal/events"
	"github.com/spec-kit/loan-service/internal/observability"
)

// Notifier delivers a message about a loan application to a user.
type Notifier interface {
	SendNotification(ctx context.Context, loanApplicationID, recipientID int64, message string) error
}

// NotificationService turns domain events into notifications.
type NotificationService struct {
	dispatcher events.Dispatcher
	notifier   Notifier
	metrics    *observability.Metrics
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	Notifier   Notifier
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(cfg config.NotificationConfig, deps NotificationDependencies) *NotificationService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		notifier:   deps.Notifier,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventLoanApplicationApproved, n.handleApproved)
}

// handleApproved notifies the owner. Delivery problems are logged and
// counted but never surface to the approving request.
func (n *NotificationService) handleApproved(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.StatusChangedPayload)
	if !ok {
		n.logger.Warn("approved event without status payload", zap.String("event_id", event.ID))
		return nil
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.cfg.Timeout)
	defer cancel()

	err := n.notifier.SendNotification(sendCtx, event.LoanApplicationID, payload.OwnerID, n.cfg.ApprovedMessage)
	if err != nil {
		n.metrics.RecordNotification("failed")
		n.logger.Error("approval notification failed",
			zap.Int64("loan_application_id", event.LoanApplicationID),
			zap.Int64("recipient_id", payload.OwnerID),
			zap.Error(err),
		)
		return nil
	}

	n.metrics.RecordNotification("sent")
	n.logger.Info("approval notification sent",
		zap.Int64("loan_application_id", event.LoanApplicationID),
		zap.Int64("recipient_id", payload.OwnerID),
	)
	return nil
}
