package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

type mockAuditor struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (m *mockAuditor) RecordAudit(_ context.Context, event, clientID, role, recordID, summary string, detail map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

func (m *mockAuditor) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func TestAuditWorkerProcessesJobs(t *testing.T) {
	auditor := &mockAuditor{}
	w := NewAuditWorker(auditor, testLogger(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	w.Enqueue(&AuditJob{Event: "preview", ClientID: "c1"})
	w.Enqueue(&AuditJob{Event: "commit", ClientID: "c1"})

	deadline := time.After(2 * time.Second)
	for auditor.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("processed %d jobs, want 2", auditor.count())
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func TestAuditWorkerDrainsOnShutdown(t *testing.T) {
	auditor := &mockAuditor{}
	w := NewAuditWorker(auditor, testLogger(), 10)

	for i := 0; i < 5; i++ {
		w.Enqueue(&AuditJob{Event: "preview"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Run(ctx)

	if auditor.count() != 5 {
		t.Errorf("drained %d jobs, want 5", auditor.count())
	}
}

func TestAuditWorkerDropsWhenFull(t *testing.T) {
	auditor := &mockAuditor{}
	w := NewAuditWorker(auditor, testLogger(), 2)

	// No worker running; the third job has nowhere to go.
	w.Enqueue(&AuditJob{Event: "a"})
	w.Enqueue(&AuditJob{Event: "b"})
	w.Enqueue(&AuditJob{Event: "c"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Run(ctx)

	if auditor.count() != 2 {
		t.Errorf("processed %d jobs, want 2", auditor.count())
	}
}

func TestAuditWorkerContinuesAfterSinkError(t *testing.T) {
	auditor := &mockAuditor{err: fmt.Errorf("sink unavailable")}
	w := NewAuditWorker(auditor, testLogger(), 10)

	w.Enqueue(&AuditJob{Event: "a"})
	w.Enqueue(&AuditJob{Event: "b"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Run(ctx)

	if auditor.count() != 2 {
		t.Errorf("processed %d jobs, want 2", auditor.count())
	}
}
