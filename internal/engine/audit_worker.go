package engine

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Auditor records one audit event in the sink.
type Auditor interface {
	RecordAudit(ctx context.Context, event, clientID, role, recordID, summary string, detail map[string]any) error
}

// LogAuditor writes audit events to the structured log. Used when no
// database is configured.
type LogAuditor struct {
	Log *logrus.Logger
}

// RecordAudit implements Auditor.
func (a *LogAuditor) RecordAudit(_ context.Context, event, clientID, role, recordID, summary string, detail map[string]any) error {
	a.Log.WithFields(logrus.Fields{
		"event":    event,
		"clientId": clientID,
		"role":     role,
		"recordId": recordID,
		"detail":   detail,
	}).Info(summary)
	return nil
}

// AuditJob is a single audit entry waiting to be recorded.
type AuditJob struct {
	Event    string
	ClientID string
	Role     string
	RecordID string
	Summary  string
	Detail   map[string]any
}

// AuditWorker buffers audit entries and writes them via a single worker
// goroutine, so request handling never blocks on the sink.
type AuditWorker struct {
	auditor Auditor
	log     *logrus.Logger
	jobs    chan *AuditJob
}

// NewAuditWorker creates an AuditWorker with the given queue capacity.
func NewAuditWorker(auditor Auditor, log *logrus.Logger, queueSize int) *AuditWorker {
	if queueSize <= 0 {
		queueSize = 1000
	}
	return &AuditWorker{
		auditor: auditor,
		log:     log,
		jobs:    make(chan *AuditJob, queueSize),
	}
}

// Enqueue adds an audit job. Non-blocking; drops the job if the queue is full.
func (w *AuditWorker) Enqueue(job *AuditJob) {
	select {
	case w.jobs <- job:
	default:
		w.log.WithField("event", job.Event).Warn("audit queue full, dropping entry")
	}
}

// Run processes audit jobs until the context is cancelled, then drains
// remaining jobs.
func (w *AuditWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case job := <-w.jobs:
			w.process(job)
		}
	}
}

func (w *AuditWorker) drain() {
	for {
		select {
		case job := <-w.jobs:
			w.process(job)
		default:
			return
		}
	}
}

func (w *AuditWorker) process(job *AuditJob) {
	if err := w.auditor.RecordAudit(
		context.Background(), job.Event, job.ClientID, job.Role, job.RecordID, job.Summary, job.Detail,
	); err != nil {
		w.log.WithError(err).Warn("audit record failed")
	}
}
