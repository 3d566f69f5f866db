package webhook

import (
	"context"
	"testing"
	"time"

	"github.com/tessera-contracts/tessera/internal/domain"
)

type fakeWebhookStore struct {
	enqueued []domain.WebhookDelivery
}

func (f *fakeWebhookStore) EnqueueWebhook(ctx context.Context, w *domain.WebhookDelivery) error {
	f.enqueued = append(f.enqueued, *w)
	return nil
}
func (f *fakeWebhookStore) ClaimPending(ctx context.Context, limit int) ([]domain.WebhookDelivery, error) {
	return nil, nil
}
func (f *fakeWebhookStore) MarkDelivered(ctx context.Context, id string, at time.Time, statusCode int) error {
	return nil
}
func (f *fakeWebhookStore) RecordAttemptFailure(ctx context.Context, id, lastError string, statusCode int) error {
	return nil
}
func (f *fakeWebhookStore) MarkFailed(ctx context.Context, id, lastError string, statusCode int) error {
	return nil
}

func TestTracker_Enqueue(t *testing.T) {
	fs := &fakeWebhookStore{}
	tr := NewTracker(fs, Config{TargetURL: "https://hooks.example.com/tessera"})

	err := tr.Enqueue(context.Background(), "proposal.created", map[string]string{"id": "p-1"})
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if len(fs.enqueued) != 1 {
		t.Fatalf("expected 1 enqueued delivery, got %d", len(fs.enqueued))
	}
	d := fs.enqueued[0]
	if d.Status != domain.WebhookStatusPending {
		t.Errorf("Status = %q, want pending", d.Status)
	}
	if d.EventType != "proposal.created" {
		t.Errorf("EventType = %q, want proposal.created", d.EventType)
	}
	if d.Attempts != 0 {
		t.Errorf("Attempts = %d, want 0", d.Attempts)
	}
}

func TestStatusCodeOf_NonHTTPError(t *testing.T) {
	if got := statusCodeOf(context.DeadlineExceeded); got != 0 {
		t.Errorf("statusCodeOf(non-http error) = %d, want 0", got)
	}
}

func TestBreakerFor_ReusesByHost(t *testing.T) {
	w := NewWorker(&fakeWebhookStore{}, Config{WorkerCount: 1, RequestTimeout: time.Second}, nil)
	b1 := w.breakerFor("https://hooks.example.com/a")
	b2 := w.breakerFor("https://hooks.example.com/b")
	if b1 != b2 {
		t.Error("expected the same circuit breaker for the same host")
	}
	b3 := w.breakerFor("https://other.example.com/a")
	if b1 == b3 {
		t.Error("expected a distinct circuit breaker for a different host")
	}
}
