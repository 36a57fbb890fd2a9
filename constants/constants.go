package constants

import "github.com/hookrelay-io/hookrelay/config"

type Header struct {
	Name  string
	Value string
}

// Outbound delivery headers
const (
	HeaderSignature  = "X-Webhook-Signature"
	HeaderEvent      = "X-Webhook-Event"
	HeaderDeliveryId = "X-Webhook-Delivery-Id"
)

var (
	DefaultResponseHeaders = []Header{
		{Name: "Server", Value: "HookRelay/" + config.VERSION},
	}
	DefaultDelivererRequestHeaders = []Header{
		{Name: "User-Agent", Value: "HookRelay/" + config.VERSION},
		{Name: "Content-Type", Value: "application/json; charset=utf-8"},
	}
)

// DefaultOrganization scopes entities when no organization is addressed
// explicitly.
const DefaultOrganization = "default"

const SweepLockName = "hookrelay:sweep"
