package inbound

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/hookrelay-io/hookrelay/pkg/http/response"
	"github.com/hookrelay-io/hookrelay/pkg/types"
	stripe "github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"
)

const maxInboundBody = 1 << 20

type receivedResponse struct {
	Received bool   `json:"received"`
	Message  string `json:"message,omitempty"`
}

// Stripe handles billing provider webhooks. The raw body is verified before
// any JSON parsing; duplicate deliveries short-circuit after the idempotency
// gate without re-running side effects.
func (gw *Gateway) Stripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxInboundBody))
	if err != nil {
		response.JSON(w, 400, types.ErrorResponse{Message: "failed to read body"})
		return
	}

	var event stripe.Event
	if gw.cfg.Stripe.SigningSecret == "" {
		// startup validation rejects this in production; refuse anyway in
		// case the config was mutated after boot
		if gw.production {
			gw.log.Error("[inbound] stripe signing secret not configured")
			response.JSON(w, 500, types.ErrorResponse{Message: "internal error"})
			return
		}
		gw.log.Warn("[inbound] stripe signing secret not configured, skipping verification")
		if err := json.Unmarshal(payload, &event); err != nil {
			response.JSON(w, 400, types.ErrorResponse{Message: "invalid payload"})
			return
		}
	} else {
		event, err = webhook.ConstructEventWithOptions(payload,
			r.Header.Get("Stripe-Signature"),
			gw.cfg.Stripe.SigningSecret,
			webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
		)
		if err != nil {
			gw.log.Infof("[inbound] stripe signature verification failed: %v", err)
			response.JSON(w, 400, types.ErrorResponse{Message: "invalid signature"})
			return
		}
	}

	admitted, err := gw.guard.Admit(r.Context(), "stripe", event.ID)
	if err != nil {
		gw.log.Errorf("[inbound] failed to admit event %s: %v", event.ID, err)
		response.JSON(w, 500, types.ErrorResponse{Message: "internal error"})
		return
	}
	if !admitted {
		response.JSON(w, 200, receivedResponse{Received: true, Message: "Already processed"})
		return
	}

	if err := gw.handleStripeEvent(r, &event); err != nil {
		gw.log.Errorf("[inbound] failed to handle event %s (%s): %v", event.ID, event.Type, err)
		response.JSON(w, 500, types.ErrorResponse{Message: "internal error"})
		return
	}

	response.JSON(w, 200, receivedResponse{Received: true})
}

func (gw *Gateway) handleStripeEvent(r *http.Request, event *stripe.Event) error {
	switch {
	case strings.HasPrefix(string(event.Type), "customer.subscription."):
		return gw.billing.HandleSubscription(r.Context(), event)
	case strings.HasPrefix(string(event.Type), "invoice."):
		return gw.billing.HandleInvoice(r.Context(), event)
	default:
		// unknown types are ignored, not an error
		gw.log.Debugf("[inbound] ignoring stripe event type: %s", event.Type)
		return nil
	}
}
