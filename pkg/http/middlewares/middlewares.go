package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/hookrelay-io/hookrelay/db/dao"
	"github.com/hookrelay-io/hookrelay/pkg/http/response"
	"github.com/hookrelay-io/hookrelay/pkg/types"
	"go.uber.org/zap"
)

// PanicRecovery converts panics into structured 500 responses. Constraint
// violations surface as 400.
func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if e := recover(); e != nil {
				var err error
				switch v := e.(type) {
				case error:
					err = v
				default:
					err = errors.New(fmt.Sprint(e))
				}

				if errors.Is(err, dao.ErrConstraintViolation) {
					response.JSON(w, 400, types.ErrorResponse{Message: err.Error()})
					return
				}

				buf := make([]byte, 2048)
				n := runtime.Stack(buf, false)
				zap.S().Errorf("panic recovered: %v\n %s", err, buf[:n])
				response.JSON(w, 500, types.ErrorResponse{Message: "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// AccessLog logs one line per request.
func AccessLog(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: 200}
			next.ServeHTTP(recorder, r)
			log.Infof("%s %s %d %s", r.Method, r.URL.Path, recorder.status, time.Since(start))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
