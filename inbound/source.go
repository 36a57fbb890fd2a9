package inbound

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hookrelay-io/hookrelay/config"
	"github.com/hookrelay-io/hookrelay/constants"
	"github.com/hookrelay-io/hookrelay/db/entities"
	"github.com/hookrelay-io/hookrelay/pkg/http/response"
	"github.com/hookrelay-io/hookrelay/pkg/types"
	"github.com/tidwall/gjson"
)

// Source ingests events from a configured provider into the delivery
// pipeline. The signature is checked over the raw body before any JSON
// parsing so whitespace or key ordering cannot break verification.
func (gw *Gateway) Source(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["source"]
	source := gw.findSource(name)
	if source == nil {
		response.JSON(w, 404, types.ErrorResponse{Message: "not found"})
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxInboundBody))
	if err != nil {
		response.JSON(w, 400, types.ErrorResponse{Message: "failed to read body"})
		return
	}

	if !gw.signer.Verify(payload, r.Header.Get(constants.HeaderSignature), source.Secret) {
		gw.log.Infof("[inbound] signature verification failed for source %s", name)
		response.JSON(w, 400, types.ErrorResponse{Message: "invalid signature"})
		return
	}

	externalId := gjson.GetBytes(payload, "id").String()
	eventType := gjson.GetBytes(payload, "type").String()
	if externalId == "" || eventType == "" {
		response.JSON(w, 400, types.ErrorResponse{Message: "id and type are required"})
		return
	}

	admitted, err := gw.guard.Admit(r.Context(), name, externalId)
	if err != nil {
		gw.log.Errorf("[inbound] failed to admit event %s: %v", externalId, err)
		response.JSON(w, 500, types.ErrorResponse{Message: "internal error"})
		return
	}
	if !admitted {
		response.JSON(w, 200, receivedResponse{Received: true, Message: "Already processed"})
		return
	}

	data := json.RawMessage(payload)
	if raw := gjson.GetBytes(payload, "data"); raw.Exists() {
		data = json.RawMessage(raw.Raw)
	}

	event := &entities.Event{
		EventType: eventType,
		Data:      data,
	}
	event.Init()
	event.OrganizationId = source.Organization

	if err := gw.dispatcher.Dispatch(r.Context(), event); err != nil {
		gw.log.Errorf("[inbound] failed to dispatch event %s: %v", event.ID, err)
		response.JSON(w, 500, types.ErrorResponse{Message: "internal error"})
		return
	}

	response.JSON(w, 200, receivedResponse{Received: true})
}

func (gw *Gateway) findSource(name string) *config.Source {
	for i := range gw.cfg.Sources {
		if gw.cfg.Sources[i].Name == name {
			return &gw.cfg.Sources[i]
		}
	}
	return nil
}
