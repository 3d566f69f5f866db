// Package webhook implements the delivery tracker and background worker of
// spec.md §4.9: enqueuing is synchronous and transactional (so a delivery
// row never outlives the mutation that created it), while the actual HTTP
// POST happens on a long-lived worker goroutine that is fire-and-forget
// from the originating request's perspective (spec.md §5).
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tessera-contracts/tessera/internal/domain"
	"github.com/tessera-contracts/tessera/internal/errs"
	"github.com/tessera-contracts/tessera/internal/idutil"
	"github.com/tessera-contracts/tessera/internal/logging"
	"github.com/tessera-contracts/tessera/internal/store"
)

// Config controls the worker's retry and polling policy, mirroring
// internal/config.WebhookConfig.
type Config struct {
	RequestTimeout time.Duration
	MaxAttempts    int
	WorkerInterval time.Duration
	WorkerCount    int
	// TargetURL is the single destination every delivery is sent to in
	// this core; production deployments with per-team destinations would
	// extend WebhookDelivery with a resolved URL at enqueue time.
	TargetURL string
}

// Tracker is the synchronous half of the component: it records a pending
// delivery row inside the caller's transaction. internal/publication and
// internal/proposal depend on this (as their WebhookEnqueuer interface),
// not on Worker, to avoid pulling the HTTP client into the request path.
type Tracker struct {
	store store.WebhookStore
	cfg   Config
	now   func() time.Time
}

// NewTracker builds a Tracker. st is typically the *in-transaction* Store
// handed to a WithTx callback, so the enqueue commits atomically with the
// proposal/contract row that triggered it.
func NewTracker(st store.WebhookStore, cfg Config) *Tracker {
	return &Tracker{store: st, cfg: cfg, now: time.Now}
}

// Enqueue implements publication.WebhookEnqueuer / proposal.WebhookEnqueuer.
func (t *Tracker) Enqueue(ctx context.Context, eventType string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return errs.Wrap(errs.CodeInternal, "marshal webhook payload", err)
	}
	d := &domain.WebhookDelivery{
		ID:        idutil.New(),
		EventType: eventType,
		Payload:   raw,
		URL:       t.cfg.TargetURL,
		Status:    domain.WebhookStatusPending,
		CreatedAt: t.now(),
	}
	return t.store.EnqueueWebhook(ctx, d)
}

// Worker drains pending WebhookDelivery rows on a ticker, attempting HTTP
// delivery with a per-destination-host circuit breaker (spec.md's
// supplemented background worker in SPEC_FULL.md).
type Worker struct {
	store        store.WebhookStore
	cfg          Config
	client       *http.Client
	logger       *zap.Logger
	breakersMu   sync.Mutex
	breakers     map[string]*gobreaker.CircuitBreaker
	now          func() time.Time
}

// NewWorker builds a Worker. logger is the process-wide singleton; a nil
// logger falls back to zap.NewNop() so tests need not construct one.
func NewWorker(st store.WebhookStore, cfg Config, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		store:    st,
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.RequestTimeout},
		logger:   logger,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
		now:      time.Now,
	}
}

// Run blocks, polling for pending deliveries every cfg.WorkerInterval and
// fanning each claimed batch out across cfg.WorkerCount goroutines via
// errgroup, until ctx is canceled (process shutdown, per spec.md §9).
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.drainOnce(ctx); err != nil {
				w.logger.Error("webhook drain failed", logging.NewFields().Component("webhook").Operation("drain").Err(err).Zap()...)
			}
		}
	}
}

func (w *Worker) drainOnce(ctx context.Context) error {
	pending, err := w.store.ClaimPending(ctx, w.cfg.WorkerCount*4)
	if err != nil {
		return errs.Wrap(errs.CodeInternal, "claim pending webhook deliveries", err)
	}
	if len(pending) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.WorkerCount)
	for i := range pending {
		d := pending[i]
		g.Go(func() error {
			w.attempt(gctx, d)
			return nil
		})
	}
	return g.Wait()
}

// attempt sends one HTTP POST for delivery d, routed through a circuit
// breaker keyed by the destination host so a single failing consumer
// cannot starve the worker pool attempting the rest of the queue.
func (w *Worker) attempt(ctx context.Context, d domain.WebhookDelivery) {
	breaker := w.breakerFor(d.URL)

	_, err := breaker.Execute(func() (interface{}, error) {
		return nil, w.post(ctx, d)
	})

	fields := logging.NewFields().Component("webhook").Operation("deliver").Resource("webhook_delivery", d.ID)
	if err == nil {
		if markErr := w.store.MarkDelivered(ctx, d.ID, w.now(), http.StatusOK); markErr != nil {
			w.logger.Error("mark webhook delivered failed", fields.Err(markErr).Zap()...)
		}
		return
	}

	w.logger.Warn("webhook delivery attempt failed", fields.Err(err).Zap()...)
	if d.Attempts+1 >= w.cfg.MaxAttempts {
		if markErr := w.store.MarkFailed(ctx, d.ID, err.Error(), statusCodeOf(err)); markErr != nil {
			w.logger.Error("mark webhook failed failed", fields.Err(markErr).Zap()...)
		}
		return
	}
	if markErr := w.store.RecordAttemptFailure(ctx, d.ID, err.Error(), statusCodeOf(err)); markErr != nil {
		w.logger.Error("record webhook attempt failure failed", fields.Err(markErr).Zap()...)
	}
}

type httpStatusError int

func (e httpStatusError) Error() string { return http.StatusText(int(e)) }

func statusCodeOf(err error) int {
	if se, ok := err.(httpStatusError); ok {
		return int(se)
	}
	return 0
}

func (w *Worker) post(ctx context.Context, d domain.WebhookDelivery) error {
	reqCtx, cancel := context.WithTimeout(ctx, w.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, d.URL, bytes.NewReader(d.Payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tessera-Event", d.EventType)

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpStatusError(resp.StatusCode)
	}
	return nil
}

func (w *Worker) breakerFor(rawURL string) *gobreaker.CircuitBreaker {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}

	w.breakersMu.Lock()
	defer w.breakersMu.Unlock()

	if b, ok := w.breakers[host]; ok {
		return b
	}
	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	w.breakers[host] = b
	return b
}
