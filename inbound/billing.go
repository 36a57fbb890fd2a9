package inbound

import (
	"context"

	stripe "github.com/stripe/stripe-go/v84"
	"go.uber.org/zap"
)

// BillingHandler applies billing provider events to subscription state.
// Implementations live outside this subsystem; the gateway only guarantees
// they run at most once per provider event.
type BillingHandler interface {
	HandleSubscription(ctx context.Context, event *stripe.Event) error
	HandleInvoice(ctx context.Context, event *stripe.Event) error
}

type NopBillingHandler struct{}

func (NopBillingHandler) HandleSubscription(ctx context.Context, event *stripe.Event) error {
	zap.S().Infof("[inbound] unhandled subscription event: %s", event.Type)
	return nil
}

func (NopBillingHandler) HandleInvoice(ctx context.Context, event *stripe.Event) error {
	zap.S().Infof("[inbound] unhandled invoice event: %s", event.Type)
	return nil
}
