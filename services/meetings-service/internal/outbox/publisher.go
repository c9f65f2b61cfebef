package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/meetings/libs/db"
	"github.com/md-rashed-zaman/meetings/libs/kafkax"
	otelx "github.com/md-rashed-zaman/meetings/libs/otel"
	"github.com/segmentio/kafka-go"
)

// PublisherConfig tunes the relay loop; zero values get defaults.
type PublisherConfig struct {
	Brokers   []string
	PollEvery time.Duration
	BatchSize int
	// Retention is how long published rows are kept. Zero disables purging.
	Retention time.Duration
}

func (c PublisherConfig) withDefaults() PublisherConfig {
	if c.PollEvery <= 0 {
		c.PollEvery = 2 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	return c
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher relays committed outbox rows to Kafka, one topic per event type.
type Publisher struct {
	pool   *db.Pool
	repo   *Repository
	logger *slog.Logger
	cfg    PublisherConfig
}

func NewPublisher(pool *db.Pool, repo *Repository, logger *slog.Logger, cfg PublisherConfig) *Publisher {
	return &Publisher{pool: pool, repo: repo, logger: logger.With("component", "outbox"), cfg: cfg.withDefaults()}
}

// Run polls until ctx is cancelled. Without brokers it returns immediately and
// rows stay in the table.
func (p *Publisher) Run(ctx context.Context) {
	if len(p.cfg.Brokers) == 0 {
		p.logger.Warn("outbox publisher disabled, no kafka brokers configured")
		return
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(p.cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	defer func() { _ = w.Close() }()

	tick := time.NewTicker(p.cfg.PollEvery)
	defer tick.Stop()
	lastPurge := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}

		if err := p.drain(ctx, w); err != nil && ctx.Err() == nil {
			p.logger.Error("outbox publish failed", "err", err)
		}
		if p.cfg.Retention > 0 && time.Since(lastPurge) >= p.cfg.Retention/4 {
			p.purge(ctx)
			lastPurge = time.Now()
		}
	}
}

// drain publishes full batches back to back so a backlog clears within one tick.
func (p *Publisher) drain(ctx context.Context, w messageWriter) error {
	for ctx.Err() == nil {
		n, err := p.publishBatch(ctx, w)
		if err != nil || n < p.cfg.BatchSize {
			return err
		}
	}
	return nil
}

func (p *Publisher) publishBatch(ctx context.Context, w messageWriter) (int, error) {
	var sent int
	err := p.pool.InTx(ctx, func(tx pgx.Tx) error {
		recs, err := p.repo.Claim(ctx, tx, p.cfg.BatchSize)
		if err != nil || len(recs) == 0 {
			return err
		}
		msgs := make([]kafka.Message, len(recs))
		ids := make([]int64, len(recs))
		for i, rec := range recs {
			msgs[i] = messageFor(ctx, rec)
			ids[i] = rec.ID
		}
		if err := w.WriteMessages(ctx, msgs...); err != nil {
			return err
		}
		sent = len(recs)
		return p.repo.MarkPublished(ctx, tx, ids)
	})
	if err == nil && sent > 0 {
		p.logger.Debug("outbox batch published", "count", sent)
	}
	return sent, err
}

func (p *Publisher) purge(ctx context.Context) {
	cutoff := time.Now().Add(-p.cfg.Retention)
	err := p.pool.InTx(ctx, func(tx pgx.Tx) error {
		n, err := p.repo.PurgePublished(ctx, tx, cutoff)
		if n > 0 {
			p.logger.Info("outbox rows purged", "count", n)
		}
		return err
	})
	if err != nil {
		p.logger.Warn("outbox purge failed", "err", err)
	}
}

// messageFor keys by aggregate id so every event for one booking lands on the
// same partition, and restores the trace of the request that wrote the row.
func messageFor(ctx context.Context, rec Record) kafka.Message {
	headers := []kafka.Header{
		{Key: "event_id", Value: []byte(rec.EventID)},
		{Key: "event_type", Value: []byte(rec.EventType)},
		{Key: "aggregate_type", Value: []byte(rec.AggregateType)},
	}
	traced := otelx.ContextWithTraceContext(ctx, rec.Traceparent, rec.Tracestate)
	return kafka.Message{
		Topic:   rec.EventType,
		Key:     []byte(rec.AggregateID),
		Value:   rec.Payload,
		Time:    rec.CreatedAt,
		Headers: kafkax.InjectTraceHeaders(traced, headers),
	}
}
