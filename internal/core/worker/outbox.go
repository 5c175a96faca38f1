package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jairoandre/maggie/internal/core/notifications"
)

// DB is the subset of *pgxpool.Pool the worker uses. Tests substitute a
// mock pool through it.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

const (
	pollInterval = 5 * time.Second
	maxAttempts  = 5
)

const claimJobSQL = `
	SELECT id, url, payload, attempts
	FROM webhook_jobs
	WHERE status = 'PENDING' AND next_run_at <= NOW()
	ORDER BY created_at ASC
	LIMIT 1
	FOR UPDATE SKIP LOCKED`

// StartOutbox delivers queued webhook jobs in the background until ctx is
// cancelled. Multiple instances may run against the same database; SKIP
// LOCKED keeps them from claiming the same job.
func StartOutbox(ctx context.Context, db DB, secret string) {
	go func() {
		slog.Info("Outbox worker started")
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Info("Outbox worker stopped")
				return
			case <-ticker.C:
				for processJob(ctx, db, secret) {
				}
			}
		}
	}()
}

// processJob claims and delivers one job, returning false once the queue
// is drained. The claim runs inside a transaction so the SKIP LOCKED row
// lock holds until the status update commits.
func processJob(ctx context.Context, db DB, secret string) bool {
	tx, err := db.Begin(ctx)
	if err != nil {
		slog.Error("Outbox: begin failed", "error", err)
		return false
	}
	defer tx.Rollback(ctx)

	var (
		id       int64
		url      string
		payload  []byte
		attempts int
	)
	if err := tx.QueryRow(ctx, claimJobSQL).Scan(&id, &url, &payload, &attempts); err != nil {
		// An empty queue is routine; anything else must not look like one.
		if !errors.Is(err, pgx.ErrNoRows) {
			slog.Error("Outbox: claim failed", "error", err)
		}
		return false
	}

	var body any
	if err := json.Unmarshal(payload, &body); err != nil {
		slog.Error("Outbox: bad payload", "error", err, "job_id", id)
		tx.Exec(ctx, `UPDATE webhook_jobs SET status = 'FAILED' WHERE id = $1`, id)
		tx.Commit(ctx)
		return true
	}

	if sendErr := notifications.SendWebhook(url, body, secret); sendErr != nil {
		attempts++
		if attempts >= maxAttempts {
			slog.Error("Outbox: job failed permanently", "error", sendErr, "job_id", id)
			tx.Exec(ctx, `UPDATE webhook_jobs SET status = 'FAILED', attempts = $2 WHERE id = $1`, id, attempts)
		} else {
			nextRun := time.Now().Add(Backoff(attempts))
			slog.Warn("Outbox: delivery failed, will retry", "error", sendErr, "job_id", id, "next_run", nextRun)
			tx.Exec(ctx, `UPDATE webhook_jobs SET attempts = $2, next_run_at = $3 WHERE id = $1`, id, attempts, nextRun)
		}
	} else {
		slog.Info("Outbox: webhook delivered", "job_id", id)
		tx.Exec(ctx, `UPDATE webhook_jobs SET status = 'COMPLETED' WHERE id = $1`, id)
	}

	if err := tx.Commit(ctx); err != nil {
		slog.Error("Outbox: commit failed", "error", err, "job_id", id)
	}
	return true
}

// Backoff returns the delay before retry number attempts.
func Backoff(attempts int) time.Duration {
	return time.Duration(attempts*10) * time.Second
}
