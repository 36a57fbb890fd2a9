package inbound

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hookrelay-io/hookrelay/config"
	"github.com/hookrelay-io/hookrelay/constants"
	"github.com/hookrelay-io/hookrelay/db"
	"github.com/hookrelay-io/hookrelay/db/dao"
	"github.com/hookrelay-io/hookrelay/db/entities"
	"github.com/hookrelay-io/hookrelay/db/query"
	"github.com/hookrelay-io/hookrelay/dispatcher"
	"github.com/hookrelay-io/hookrelay/pkg/signature"
	stripe "github.com/stripe/stripe-go/v84"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	processed int
	err       error
	calls     int
}

func (f *fakeSweeper) ProcessDue(ctx context.Context) (int, error) {
	f.calls++
	return f.processed, f.err
}

type fakeInboundEventDAO struct {
	dao.InboundEventDAO

	admitted map[string]bool
}

func (f *fakeInboundEventDAO) Admit(ctx context.Context, provider, externalEventId string) (bool, error) {
	key := provider + "/" + externalEventId
	if f.admitted[key] {
		return false, nil
	}
	f.admitted[key] = true
	return true, nil
}

type fakeEndpointDAO struct {
	dao.EndpointDAO
}

func (f *fakeEndpointDAO) List(ctx context.Context, q query.Queryer) ([]*entities.Endpoint, error) {
	return nil, nil
}

type fakeEventDAO struct {
	dao.EventDAO

	inserted []*entities.Event
}

func (f *fakeEventDAO) Insert(ctx context.Context, event *entities.Event) error {
	f.inserted = append(f.inserted, event)
	return nil
}

type fakeQueue struct{}

func (fakeQueue) Enqueue(ctx context.Context, attemptIDs []string) {}

type countingBillingHandler struct {
	subscriptions int
	invoices      int
}

func (h *countingBillingHandler) HandleSubscription(ctx context.Context, event *stripe.Event) error {
	h.subscriptions++
	return nil
}

func (h *countingBillingHandler) HandleInvoice(ctx context.Context, event *stripe.Event) error {
	h.invoices++
	return nil
}

type gatewayFixture struct {
	gw      *Gateway
	sweeper *fakeSweeper
	events  *fakeEventDAO
	billing *countingBillingHandler
}

func newFixture(cfg *config.InboundConfig) *gatewayFixture {
	events := &fakeEventDAO{}
	database := &db.DB{
		Endpoints:     &fakeEndpointDAO{},
		Events:        events,
		InboundEvents: &fakeInboundEventDAO{admitted: map[string]bool{}},
	}

	sweeper := &fakeSweeper{}
	billing := &countingBillingHandler{}
	gw := NewGateway(Options{
		Config:         cfg,
		DB:             database,
		Dispatcher:     dispatcher.NewDispatcher(nil, fakeQueue{}, database),
		Sweeper:        sweeper,
		Signer:         signature.NewSigner(),
		BillingHandler: billing,
	})
	return &gatewayFixture{gw: gw, sweeper: sweeper, events: events, billing: billing}
}

func (f *gatewayFixture) request(method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for name, value := range headers {
		req.Header.Set(name, value)
	}
	w := httptest.NewRecorder()
	f.gw.Handler().ServeHTTP(w, req)
	return w
}

func TestCronUnauthorized(t *testing.T) {
	f := newFixture(&config.InboundConfig{CronToken: "cron-secret"})

	w := f.request("POST", "/cron/webhook-retries", nil, nil)
	assert.Equal(t, 401, w.Code)

	w = f.request("POST", "/cron/webhook-retries", nil, map[string]string{
		"Authorization": "Bearer wrong",
	})
	assert.Equal(t, 401, w.Code)
	assert.Equal(t, 0, f.sweeper.calls)
}

func TestCron(t *testing.T) {
	f := newFixture(&config.InboundConfig{CronToken: "cron-secret"})
	f.sweeper.processed = 3

	w := f.request("POST", "/cron/webhook-retries", nil, map[string]string{
		"Authorization": "Bearer cron-secret",
	})
	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"success": true, "processed": 3}`, w.Body.String())
	assert.Equal(t, 1, f.sweeper.calls)
}

func TestCronSweepError(t *testing.T) {
	f := newFixture(&config.InboundConfig{CronToken: "cron-secret"})
	f.sweeper.err = errors.New("db is down")

	w := f.request("POST", "/cron/webhook-retries", nil, map[string]string{
		"Authorization": "Bearer cron-secret",
	})
	assert.Equal(t, 500, w.Code)
	assert.JSONEq(t, `{"success": false, "processed": 0}`, w.Body.String())
}

func sourceConfig() *config.InboundConfig {
	return &config.InboundConfig{
		CronToken: "cron-secret",
		Sources: []config.Source{
			{Name: "partner", Secret: "partner-secret", Organization: "default"},
		},
	}
}

func TestSource(t *testing.T) {
	f := newFixture(sourceConfig())

	payload := []byte(`{"id": "evt_1", "type": "order.created", "data": {"order_id": "o_1"}}`)
	header := signature.NewSigner().Header(time.Now(), payload, "partner-secret")

	w := f.request("POST", "/webhooks/partner", payload, map[string]string{
		constants.HeaderSignature: header,
	})
	assert.Equal(t, 200, w.Code)
	require.Len(t, f.events.inserted, 1)
	assert.Equal(t, "order.created", f.events.inserted[0].EventType)
	assert.JSONEq(t, `{"order_id": "o_1"}`, string(f.events.inserted[0].Data))
	assert.Equal(t, "default", f.events.inserted[0].OrganizationId)
}

func TestSourceDuplicate(t *testing.T) {
	f := newFixture(sourceConfig())

	payload := []byte(`{"id": "evt_1", "type": "order.created"}`)
	header := signature.NewSigner().Header(time.Now(), payload, "partner-secret")
	headers := map[string]string{constants.HeaderSignature: header}

	w := f.request("POST", "/webhooks/partner", payload, headers)
	assert.Equal(t, 200, w.Code)

	w = f.request("POST", "/webhooks/partner", payload, headers)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "Already processed")
	assert.Len(t, f.events.inserted, 1)
}

func TestSourceInvalidSignature(t *testing.T) {
	f := newFixture(sourceConfig())

	payload := []byte(`{"id": "evt_1", "type": "order.created"}`)
	header := signature.NewSigner().Header(time.Now(), payload, "wrong-secret")

	w := f.request("POST", "/webhooks/partner", payload, map[string]string{
		constants.HeaderSignature: header,
	})
	assert.Equal(t, 400, w.Code)
	assert.Empty(t, f.events.inserted)
}

func TestSourceUnknown(t *testing.T) {
	f := newFixture(sourceConfig())

	w := f.request("POST", "/webhooks/nope", []byte(`{}`), nil)
	assert.Equal(t, 404, w.Code)
}

func stripeSignature(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestStripe(t *testing.T) {
	cfg := sourceConfig()
	cfg.Stripe.SigningSecret = "whsec_stripe"
	f := newFixture(cfg)

	payload := []byte(`{"id": "evt_s1", "type": "customer.subscription.updated"}`)
	w := f.request("POST", "/webhooks/stripe", payload, map[string]string{
		"Stripe-Signature": stripeSignature(payload, "whsec_stripe", time.Now()),
	})
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, 1, f.billing.subscriptions)
}

func TestStripeInvalidSignature(t *testing.T) {
	cfg := sourceConfig()
	cfg.Stripe.SigningSecret = "whsec_stripe"
	f := newFixture(cfg)

	payload := []byte(`{"id": "evt_s1", "type": "customer.subscription.updated"}`)
	w := f.request("POST", "/webhooks/stripe", payload, map[string]string{
		"Stripe-Signature": stripeSignature(payload, "whsec_other", time.Now()),
	})
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, 0, f.billing.subscriptions)
}

func TestStripeDuplicate(t *testing.T) {
	cfg := sourceConfig()
	f := newFixture(cfg) // no signing secret, verification skipped

	payload := []byte(`{"id": "evt_s2", "type": "invoice.paid"}`)

	w := f.request("POST", "/webhooks/stripe", payload, nil)
	assert.Equal(t, 200, w.Code)

	w = f.request("POST", "/webhooks/stripe", payload, nil)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "Already processed")
	assert.Equal(t, 1, f.billing.invoices)
}

func TestStripeUnverifiedRefusedInProduction(t *testing.T) {
	f := newFixture(sourceConfig()) // no signing secret
	f.gw.production = true

	payload := []byte(`{"id": "evt_s4", "type": "invoice.paid"}`)
	w := f.request("POST", "/webhooks/stripe", payload, nil)
	assert.Equal(t, 500, w.Code)
	assert.Equal(t, 0, f.billing.invoices)
}

func TestStripeUnknownType(t *testing.T) {
	f := newFixture(sourceConfig())

	payload := []byte(`{"id": "evt_s3", "type": "charge.refunded"}`)
	w := f.request("POST", "/webhooks/stripe", payload, nil)
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, 0, f.billing.subscriptions)
	assert.Equal(t, 0, f.billing.invoices)
}
