package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is satisfied by pgxpool.Pool and pgxmock.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Publisher queues events for every configured endpoint. A Worker does
// the actual delivery.
type Publisher struct {
	db          DB
	client      *http.Client
	endpoints   map[string]Endpoint
	maxAttempts int
	logger      *slog.Logger
	now         func() time.Time
}

func NewPublisher(db DB, endpoints []Endpoint, maxAttempts int, logger *slog.Logger) *Publisher {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	byURL := make(map[string]Endpoint, len(endpoints))
	for _, e := range endpoints {
		byURL[e.URL] = e
	}
	return &Publisher{
		db: db,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		endpoints:   byURL,
		maxAttempts: maxAttempts,
		logger:      logger.With("component", "webhook"),
		now:         time.Now,
	}
}

// Enabled reports whether any endpoint is configured.
func (p *Publisher) Enabled() bool {
	return len(p.endpoints) > 0
}

// Publish enqueues one job per endpoint.
func (p *Publisher) Publish(ctx context.Context, eventType string, data any) error {
	if !p.Enabled() {
		return nil
	}

	payload, err := json.Marshal(Event{
		ID:        uuid.New(),
		Type:      eventType,
		Data:      data,
		Timestamp: p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	query := `
		INSERT INTO webhook_queue (id, url, event_type, payload, max_attempts, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
	`
	for url := range p.endpoints {
		if _, err := p.db.Exec(ctx, query, uuid.New(), url, eventType, payload, p.maxAttempts); err != nil {
			return fmt.Errorf("enqueue webhook: %w", err)
		}
	}
	return nil
}

// Send posts a job to its endpoint once.
func (p *Publisher) Send(ctx context.Context, endpoint Endpoint, job *Job) error {
	ts := p.now().Unix()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(job.Payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Chamada-Webhook/1.0")
	req.Header.Set("X-Chamada-Event", job.EventType)
	req.Header.Set("X-Chamada-Delivery", job.ID.String())
	req.Header.Set("X-Chamada-Timestamp", strconv.FormatInt(ts, 10))
	if endpoint.Secret != "" {
		req.Header.Set("X-Chamada-Signature", Sign(endpoint.Secret, ts, job.Payload))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return nil
}
