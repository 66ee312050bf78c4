package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/telekom/k8s-podsec-admission/pkg/admission"
)

type captureSink struct {
	mu     sync.Mutex
	events []*Event
	err    error
	closed bool
}

func (c *captureSink) Write(_ context.Context, event *Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, event)
	return nil
}

func (c *captureSink) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *captureSink) Name() string { return "capture" }

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestNewDecisionEvent(t *testing.T) {
	actor := Actor{User: "jane", Groups: []string{"dev"}}
	target := Target{Namespace: "ns", Pod: "web"}

	admitted := NewDecisionEvent(actor, target, admission.Result{
		Outcome:        admission.OutcomeAdmitted,
		SelectedPolicy: "restricted",
	})
	if admitted.Type != EventDecisionAdmitted || admitted.SelectedPolicy != "restricted" {
		t.Fatalf("unexpected admitted event %+v", admitted)
	}
	if admitted.ID == "" || admitted.Timestamp.IsZero() {
		t.Fatalf("event must carry id and timestamp")
	}

	denied := NewDecisionEvent(actor, target, admission.Result{
		Outcome:  admission.OutcomeDenied,
		Failures: []admission.CandidateFailure{{Policy: "restricted", Reasons: []string{"privileged true not allowed"}}},
	})
	if denied.Type != EventDecisionDenied || len(denied.Failures) != 1 {
		t.Fatalf("unexpected denied event %+v", denied)
	}

	cancelled := NewDecisionEvent(actor, target, admission.Result{
		Outcome: admission.OutcomeCancelled,
		Reason:  "admission evaluation cancelled",
	})
	if cancelled.Type != EventDecisionCancelled || cancelled.Reason == "" {
		t.Fatalf("unexpected cancelled event %+v", cancelled)
	}

	if admitted.ID == denied.ID {
		t.Fatalf("events must have distinct ids")
	}
}

func TestNewErrorEvent(t *testing.T) {
	e := NewErrorEvent(Actor{User: "jane"}, Target{Namespace: "ns"}, errors.New("rbac backend unavailable"))
	if e.Type != EventDecisionError || e.Reason != "rbac backend unavailable" {
		t.Fatalf("unexpected error event %+v", e)
	}
}

func TestServiceFanOut(t *testing.T) {
	a := &captureSink{}
	b := &captureSink{err: errors.New("sink down")}
	c := &captureSink{}
	svc := NewService(zap.NewNop().Sugar(), a, b, c)

	svc.Record(context.Background(), NewErrorEvent(Actor{User: "jane"}, Target{Namespace: "ns"}, errors.New("x")))

	// a failing sink never prevents delivery to the others
	if a.count() != 1 || c.count() != 1 {
		t.Fatalf("expected delivery to healthy sinks, got %d and %d", a.count(), c.count())
	}

	if err := svc.Close(); err != nil {
		t.Fatalf("unexpected close err: %v", err)
	}
	if !a.closed || !c.closed {
		t.Fatalf("expected sinks to be closed")
	}
}

func TestServiceNilSafe(t *testing.T) {
	var svc *Service
	svc.Record(context.Background(), NewErrorEvent(Actor{}, Target{}, errors.New("x")))
	if err := svc.Close(); err != nil {
		t.Fatalf("nil service close must be a no-op: %v", err)
	}
}

func TestQueuedSinkDelivers(t *testing.T) {
	inner := &captureSink{}
	q := NewQueuedSink(inner, QueuedSinkConfig{QueueSize: 16}, zap.NewNop())

	for i := 0; i < 5; i++ {
		if err := q.Write(context.Background(), NewErrorEvent(Actor{}, Target{}, errors.New("x"))); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	}

	// Close flushes the queue before returning
	if err := q.Close(); err != nil {
		t.Fatalf("unexpected close err: %v", err)
	}
	if inner.count() != 5 {
		t.Fatalf("expected 5 delivered events, got %d", inner.count())
	}
	processed, failed, dropped := q.Stats()
	if processed != 5 || failed != 0 || dropped != 0 {
		t.Fatalf("unexpected stats: %d %d %d", processed, failed, dropped)
	}
	if !inner.closed {
		t.Fatalf("expected wrapped sink to be closed")
	}
}

type blockingSink struct {
	release chan struct{}
	capture captureSink
}

func (b *blockingSink) Write(ctx context.Context, event *Event) error {
	<-b.release
	return b.capture.Write(ctx, event)
}

func (b *blockingSink) Close() error { return b.capture.Close() }

func (b *blockingSink) Name() string { return "blocking" }

func TestQueuedSinkDropsWhenFull(t *testing.T) {
	inner := &blockingSink{release: make(chan struct{})}
	q := NewQueuedSink(inner, QueuedSinkConfig{QueueSize: 1}, zap.NewNop())

	// at most one event can be in flight with the worker and one in the
	// queue; everything beyond that is dropped
	for i := 0; i < 10; i++ {
		_ = q.Write(context.Background(), NewErrorEvent(Actor{}, Target{}, errors.New("x")))
	}
	if _, _, dropped := q.Stats(); dropped == 0 {
		t.Fatalf("expected drops with a full queue")
	}

	close(inner.release)
	if err := q.Close(); err != nil {
		t.Fatalf("unexpected close err: %v", err)
	}
}

func TestQueuedSinkWriteAfterClose(t *testing.T) {
	inner := &captureSink{}
	q := NewQueuedSink(inner, QueuedSinkConfig{}, zap.NewNop())
	if err := q.Close(); err != nil {
		t.Fatalf("unexpected close err: %v", err)
	}
	if err := q.Write(context.Background(), NewErrorEvent(Actor{}, Target{}, errors.New("x"))); err != nil {
		t.Fatalf("write after close must be a silent no-op: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("double close must be safe: %v", err)
	}
}
