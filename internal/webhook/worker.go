package webhook

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const batchSize = 10

// staleAfter is how long a job may stay in sending before another worker
// takes it over.
const staleAfter = 5 * time.Minute

type Worker struct {
	db        DB
	publisher *Publisher
	logger    *slog.Logger
	interval  time.Duration
}

func NewWorker(db DB, publisher *Publisher, logger *slog.Logger, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Worker{
		db:        db,
		publisher: publisher,
		logger:    logger.With("component", "webhook_worker"),
		interval:  interval,
	}
}

// Run polls the queue until ctx is done.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("webhook worker started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("webhook worker stopped")
			return
		case <-ticker.C:
			if _, err := w.ProcessQueue(ctx); err != nil {
				w.logger.Error("failed to process webhook queue", "error", err)
			}
		}
	}
}

// ProcessQueue claims a batch of due jobs and tries each once. It returns
// the number of jobs delivered.
func (w *Worker) ProcessQueue(ctx context.Context) (int, error) {
	jobs, err := w.claim(ctx)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for i := range jobs {
		ok, err := w.processJob(ctx, &jobs[i])
		if err != nil {
			w.logger.Error("failed to process webhook job",
				"job_id", jobs[i].ID,
				"url", jobs[i].URL,
				"attempts", jobs[i].Attempts,
				"error", err,
			)
		}
		if ok {
			delivered++
		}
	}
	return delivered, nil
}

func (w *Worker) claim(ctx context.Context) ([]Job, error) {
	query := `
		UPDATE webhook_queue
		SET status = 'sending', updated_at = NOW()
		WHERE id IN (
			SELECT id FROM webhook_queue
			WHERE (status = 'pending' AND next_retry_at <= NOW())
			   OR (status = 'sending' AND updated_at < $1)
			ORDER BY created_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT $2
		)
		RETURNING id, url, event_type, payload, attempts, max_attempts
	`

	rows, err := w.db.Query(ctx, query, w.publisher.now().Add(-staleAfter), batchSize)
	if err != nil {
		return nil, fmt.Errorf("claim webhook jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var job Job
		if err := rows.Scan(&job.ID, &job.URL, &job.EventType, &job.Payload, &job.Attempts, &job.MaxAttempts); err != nil {
			return nil, fmt.Errorf("scan webhook job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (w *Worker) processJob(ctx context.Context, job *Job) (bool, error) {
	endpoint, ok := w.publisher.endpoints[job.URL]
	if !ok {
		return false, w.markFailed(ctx, job, "endpoint no longer configured")
	}

	if err := w.publisher.Send(ctx, endpoint, job); err != nil {
		return false, w.scheduleRetry(ctx, job, err.Error())
	}
	return true, w.markDelivered(ctx, job)
}

// scheduleRetry backs off 2^attempts seconds. The job fails for good once
// it has used all of its attempts.
func (w *Worker) scheduleRetry(ctx context.Context, job *Job, errorMsg string) error {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		return w.markFailed(ctx, job, errorMsg)
	}

	nextRetry := w.publisher.now().Add(time.Duration(1<<attempts) * time.Second)

	query := `
		UPDATE webhook_queue
		SET attempts = $1,
		    next_retry_at = $2,
		    last_error = $3,
		    status = 'pending',
		    updated_at = NOW()
		WHERE id = $4
	`

	if _, err := w.db.Exec(ctx, query, attempts, nextRetry, errorMsg, job.ID); err != nil {
		return fmt.Errorf("schedule retry: %w", err)
	}

	w.logger.Info("webhook job scheduled for retry",
		"job_id", job.ID,
		"attempts", attempts,
		"next_retry", nextRetry,
		"error", errorMsg,
	)
	return nil
}

func (w *Worker) markDelivered(ctx context.Context, job *Job) error {
	query := `
		UPDATE webhook_queue
		SET status = 'delivered',
		    attempts = attempts + 1,
		    delivered_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1
	`

	if _, err := w.db.Exec(ctx, query, job.ID); err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}

	w.logger.Debug("webhook job delivered", "job_id", job.ID, "event", job.EventType)
	return nil
}

func (w *Worker) markFailed(ctx context.Context, job *Job, errorMsg string) error {
	query := `
		UPDATE webhook_queue
		SET status = 'failed',
		    last_error = $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	if _, err := w.db.Exec(ctx, query, errorMsg, job.ID); err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}

	w.logger.Warn("webhook job failed", "job_id", job.ID, "url", job.URL, "error", errorMsg)
	return nil
}
