package inbound

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/hookrelay-io/hookrelay/pkg/http/response"
	"github.com/hookrelay-io/hookrelay/pkg/types"
)

type sweepResponse struct {
	Success   bool `json:"success"`
	Processed int  `json:"processed"`
}

// Cron runs one sweep pass. It is intended to be invoked by an external
// scheduler every 1-5 minutes and is protected by a shared token.
func (gw *Gateway) Cron(w http.ResponseWriter, r *http.Request) {
	if !gw.authorized(r) {
		response.JSON(w, 401, types.ErrorResponse{Message: "unauthorized"})
		return
	}

	processed, err := gw.sweeper.ProcessDue(r.Context())
	if err != nil {
		gw.log.Errorf("[inbound] sweep failed: %v", err)
		response.JSON(w, 500, sweepResponse{Success: false, Processed: processed})
		return
	}

	response.JSON(w, 200, sweepResponse{Success: true, Processed: processed})
}

func (gw *Gateway) authorized(r *http.Request) bool {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" || gw.cfg.CronToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(gw.cfg.CronToken)) == 1
}
