package worker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redsync/redsync/v4"
	goredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/hookrelay-io/hookrelay/config"
	"github.com/hookrelay-io/hookrelay/constants"
	"github.com/hookrelay-io/hookrelay/db"
	"github.com/hookrelay-io/hookrelay/db/dao"
	"github.com/hookrelay-io/hookrelay/db/entities"
	"github.com/hookrelay-io/hookrelay/pkg/pool"
	"github.com/hookrelay-io/hookrelay/pkg/signature"
	"github.com/hookrelay-io/hookrelay/pkg/types"
	"github.com/hookrelay-io/hookrelay/utils"
	"github.com/hookrelay-io/hookrelay/worker/deliverer"
	"github.com/hookrelay-io/hookrelay/worker/retry"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrWorkerStarted = errors.New("already started")
	ErrWorkerStopped = errors.New("already stopped")
)

const maxBodySnapshot = 4096

// claimTTL bounds how long an attempt may stay DELIVERING. It must exceed the
// delivery timeout; a claim older than this belongs to a dead worker.
const claimTTL = time.Minute

// Worker claims pending attempts and performs deliveries. It serves two
// paths: immediate handoff from the dispatcher (Enqueue) and the periodic
// sweep over due retries (ProcessDue).
type Worker struct {
	mux     sync.Mutex
	started bool
	log     *zap.SugaredLogger

	cfg       *config.WorkerConfig
	db        *db.DB
	deliverer deliverer.Deliverer
	signer    *signature.Signer
	retry     retry.Retry
	pool      *pool.Pool

	// events are immutable, so caching them across retries is safe
	events *lru.LRU[string, *entities.Event]

	locker *redsync.Redsync
	cron   *cron.Cron
}

type Options struct {
	Config    *config.WorkerConfig
	DB        *db.DB
	Deliverer deliverer.Deliverer
	Signer    *signature.Signer
	Redis     *redis.Client
	Log       *zap.SugaredLogger
}

func NewWorker(opts Options) *Worker {
	cfg := opts.Config
	w := &Worker{
		log:       opts.Log,
		cfg:       cfg,
		db:        opts.DB,
		deliverer: opts.Deliverer,
		signer:    opts.Signer,
		retry: retry.NewRetry(retry.BackoffStrategy,
			retry.WithBackoff(
				time.Duration(cfg.Retry.BaseDelay)*time.Second,
				cfg.Retry.Multiplier,
				time.Duration(cfg.Retry.MaxDelay)*time.Second,
			),
			retry.WithMaxAttempts(cfg.Retry.MaxAttempts),
		),
		pool:   pool.NewPool(int(cfg.Pool.Size), int(cfg.Pool.Concurrency)),
		events: lru.NewLRU[string, *entities.Event](4096, nil, time.Hour),
	}
	if opts.Log == nil {
		w.log = zap.S()
	}
	if opts.Redis != nil {
		w.locker = redsync.New(goredis.NewPool(opts.Redis))
	}
	return w
}

func (w *Worker) Start() error {
	w.mux.Lock()
	defer w.mux.Unlock()

	if w.started {
		return ErrWorkerStarted
	}

	if w.cfg.Sweep.Cron != "" {
		w.cron = cron.New()
		_, err := w.cron.AddFunc(w.cfg.Sweep.Cron, func() {
			processed, err := w.ProcessDue(context.Background())
			if err != nil {
				w.log.Errorf("[worker] sweep failed: %v", err)
				return
			}
			if processed > 0 {
				w.log.Infof("[worker] sweep processed %d attempts", processed)
			}
		})
		if err != nil {
			return err
		}
		w.cron.Start()
	}

	w.started = true
	w.log.Info("[worker] started")

	return nil
}

func (w *Worker) Stop() error {
	w.mux.Lock()
	defer w.mux.Unlock()

	if !w.started {
		return ErrWorkerStopped
	}

	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
	w.pool.Shutdown()

	w.started = false
	w.log.Info("[worker] stopped")

	return nil
}

// Enqueue implements dispatcher.Queue: attempts are claimed and delivered on
// the pool, never on the caller's goroutine.
func (w *Worker) Enqueue(ctx context.Context, attemptIDs []string) {
	for _, id := range attemptIDs {
		id := id
		err := w.pool.SubmitFn(time.Second*5, func() {
			w.process(context.Background(), id)
		})
		if err != nil {
			// the sweep will pick the attempt up, it stays PENDING
			w.log.Warnf("[worker] failed to submit attempt %s: %v", id, err)
		}
	}
}

// ProcessDue runs one sweep pass: it claims every attempt with
// next_retry_at <= now and delivers each at bounded concurrency. The pass is
// re-entrant; concurrent passes cannot double-deliver because claiming is a
// conditional status transition.
func (w *Worker) ProcessDue(ctx context.Context) (int, error) {
	if w.locker != nil {
		mutex := w.locker.NewMutex(constants.SweepLockName,
			redsync.WithExpiry(2*time.Minute),
			redsync.WithTries(1),
		)
		if err := mutex.LockContext(ctx); err != nil {
			w.log.Debugf("[worker] sweep already running elsewhere: %v", err)
			return 0, nil
		}
		defer mutex.UnlockContext(ctx)
	}

	requeued, err := w.db.Attempts.RequeueStale(ctx, claimTTL)
	if err != nil {
		return 0, err
	}
	if requeued > 0 {
		w.log.Warnf("[worker] requeued %d stale claims", requeued)
	}

	var processed atomic.Int64
	for {
		ids, err := w.db.Attempts.ListDueIDs(ctx, w.cfg.Sweep.BatchSize)
		if err != nil {
			return int(processed.Load()), err
		}
		if len(ids) == 0 {
			break
		}

		g := new(errgroup.Group)
		g.SetLimit(int(w.cfg.Pool.Concurrency))
		for _, id := range ids {
			id := id
			g.Go(func() error {
				if w.process(ctx, id) {
					processed.Add(1)
				}
				return nil
			})
		}
		_ = g.Wait()

		if len(ids) < w.cfg.Sweep.BatchSize {
			break
		}
	}

	return int(processed.Load()), nil
}

// process claims and delivers one attempt. It returns false when the attempt
// was already claimed or terminal. Delivery failures become ledger state and
// are never propagated.
func (w *Worker) process(ctx context.Context, id string) bool {
	attempt, err := w.db.Attempts.Claim(ctx, id)
	if err != nil {
		w.log.Errorf("[worker] failed to claim attempt %s: %v", id, err)
		return false
	}
	if attempt == nil {
		return false
	}

	result := w.deliver(ctx, attempt)
	if err := w.db.Attempts.UpdateDelivery(ctx, attempt.ID, result); err != nil {
		w.log.Errorf("[worker] failed to record attempt %s: %v", attempt.ID, err)
	}
	return true
}

func (w *Worker) deliver(ctx context.Context, attempt *entities.Attempt) *dao.DeliveryResult {
	endpoint, err := w.db.Endpoints.Get(ctx, attempt.EndpointId)
	if err != nil {
		w.log.Errorf("[worker] failed to load endpoint %s: %v", attempt.EndpointId, err)
		return w.failure(attempt, nil, nil, nil, entities.AttemptErrorCodeUnknown, err.Error())
	}
	if endpoint == nil {
		return cancel(attempt, entities.AttemptErrorCodeEndpointNotFound)
	}
	// stop wasted work on endpoints deactivated while retries were pending
	if !endpoint.Enabled {
		return cancel(attempt, entities.AttemptErrorCodeEndpointDisabled)
	}

	event, err := w.getEvent(ctx, attempt.EventId)
	if err != nil || event == nil {
		w.log.Errorf("[worker] failed to load event %s: %v", attempt.EventId, err)
		return w.failure(attempt, nil, nil, nil, entities.AttemptErrorCodeUnknown, "event not found")
	}

	// the signature is computed just before the send so a rotated secret
	// takes effect for queued attempts
	now := time.Now()
	req := &deliverer.Request{
		URL:     endpoint.URL,
		Method:  "POST",
		Payload: event.Data,
		Headers: map[string]string{
			constants.HeaderSignature:  w.signer.Header(now, event.Data, endpoint.Secret),
			constants.HeaderEvent:      event.EventType,
			constants.HeaderDeliveryId: attempt.ID,
		},
	}

	res := w.deliverer.Deliver(ctx, req)

	reqSnapshot := snapshotRequest(req)
	resSnapshot := snapshotResponse(res)

	if res.Error == nil && res.Is2xx() {
		w.log.Debugf("[worker] delivered attempt %s (%d)", attempt.ID, res.StatusCode)
		return &dao.DeliveryResult{
			Status:        entities.AttemptStatusSuccess,
			AttemptNumber: attempt.AttemptNumber,
			StatusCode:    utils.Pointer(res.StatusCode),
			DeliveredAt:   utils.Pointer(types.NewTime(time.Now())),
			Request:       reqSnapshot,
			Response:      resSnapshot,
		}
	}

	var statusCode *int
	var code entities.AttemptErrorCode
	var lastError string
	switch {
	case errors.Is(res.Error, context.DeadlineExceeded):
		code = entities.AttemptErrorCodeTimeout
		lastError = "request timeout"
	case res.Error != nil:
		code = entities.AttemptErrorCodeConnection
		if isNetError(res.Error) {
			lastError = res.Error.Error()
		} else {
			code = entities.AttemptErrorCodeUnknown
			lastError = res.Error.Error()
		}
	default:
		statusCode = utils.Pointer(res.StatusCode)
		lastError = fmt.Sprintf("endpoint responded with status %d", res.StatusCode)
	}

	return w.failure(attempt, statusCode, reqSnapshot, resSnapshot, code, lastError)
}

// failure applies the retry policy: schedule the next try, or finalize the
// attempt once tries are exhausted.
func (w *Worker) failure(attempt *entities.Attempt, statusCode *int, req *entities.AttemptRequest, res *entities.AttemptResponse, code entities.AttemptErrorCode, lastError string) *dao.DeliveryResult {
	result := &dao.DeliveryResult{
		AttemptNumber: attempt.AttemptNumber,
		StatusCode:    statusCode,
		LastError:     utils.Pointer(lastError),
		Request:       req,
		Response:      res,
	}

	delay := w.retry.NextDelay(attempt.AttemptNumber)
	if delay == retry.Stop {
		w.log.Infof("[worker] attempt %s exhausted after %d tries", attempt.ID, attempt.AttemptNumber)
		result.Status = entities.AttemptStatusFailed
		result.ErrorCode = utils.Pointer(entities.AttemptErrorCodeExhausted)
		if code != "" {
			result.ErrorCode = utils.Pointer(code)
		}
		return result
	}

	result.Status = entities.AttemptStatusPending
	result.AttemptNumber = attempt.AttemptNumber + 1
	result.NextRetryAt = utils.Pointer(types.NewTime(time.Now().Add(delay)))
	if code != "" {
		result.ErrorCode = utils.Pointer(code)
	}
	return result
}

func cancel(attempt *entities.Attempt, code entities.AttemptErrorCode) *dao.DeliveryResult {
	return &dao.DeliveryResult{
		Status:        entities.AttemptStatusCanceled,
		AttemptNumber: attempt.AttemptNumber,
		ErrorCode:     utils.Pointer(code),
	}
}

func (w *Worker) getEvent(ctx context.Context, id string) (*entities.Event, error) {
	if event, ok := w.events.Get(id); ok {
		return event, nil
	}
	event, err := w.db.Events.Get(ctx, id)
	if err != nil || event == nil {
		return nil, err
	}
	w.events.Add(id, event)
	return event, nil
}

func isNetError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}

func snapshotRequest(req *deliverer.Request) *entities.AttemptRequest {
	headers := make(map[string]string, len(req.Headers))
	for name, value := range req.Headers {
		headers[name] = value
	}
	return &entities.AttemptRequest{
		Method:  req.Method,
		URL:     req.URL,
		Headers: headers,
		Body:    utils.Pointer(truncate(req.Payload)),
	}
}

func snapshotResponse(res *deliverer.Response) *entities.AttemptResponse {
	if res.Error != nil {
		return nil
	}
	headers := make(map[string]string, len(res.Header))
	for name := range res.Header {
		headers[name] = res.Header.Get(name)
	}
	return &entities.AttemptResponse{
		Status:  res.StatusCode,
		Headers: headers,
		Body:    utils.Pointer(truncate(res.ResponseBody)),
	}
}

func truncate(b []byte) string {
	if len(b) > maxBodySnapshot {
		return string(b[:maxBodySnapshot]) + "... (" + strconv.Itoa(len(b)) + " bytes)"
	}
	return string(b)
}
