package consumer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Ceir-Ceir/Tanami-Leki/internal/domain"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/repository"
)

const finalFlushTimeout = 5 * time.Second

// BatchWriterConfig configures the batch writer
type BatchWriterConfig struct {
	MaxBatchSize int
	FlushTimeout time.Duration
}

// BatchWriter groups envelopes and writes them to the analytics mirror.
// A batch is acked only when every event in it was inserted.
type BatchWriter struct {
	repository repository.AnalyticsRepository
	config     BatchWriterConfig
	log        *zap.Logger
}

func NewBatchWriter(repo repository.AnalyticsRepository, config BatchWriterConfig, log *zap.Logger) *BatchWriter {
	return &BatchWriter{
		repository: repo,
		config:     config,
		log:        log,
	}
}

// Start consumes envelopes until in is closed or ctx is done. Pending
// envelopes are flushed on the way out.
func (w *BatchWriter) Start(ctx context.Context, in <-chan *Envelope) {
	ticker := time.NewTicker(w.config.FlushTimeout)
	defer ticker.Stop()

	batch := make([]*Envelope, 0, w.config.MaxBatchSize)

	flush := func(ctx context.Context, reason string) {
		if len(batch) == 0 {
			return
		}
		w.log.Debug("Flushing batch",
			zap.String("reason", reason),
			zap.Int("envelope_count", len(batch)))
		w.processBatch(ctx, batch)
		batch = make([]*Envelope, 0, w.config.MaxBatchSize)
	}

	finalFlush := func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalFlushTimeout)
		defer cancel()
		flush(flushCtx, "shutdown")
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Batch writer shutting down")
			finalFlush()
			return

		case envelope, ok := <-in:
			if !ok {
				w.log.Info("Batch writer input channel closed")
				finalFlush()
				return
			}

			batch = append(batch, envelope)
			if len(batch) >= w.config.MaxBatchSize {
				flush(ctx, "size")
				ticker.Reset(w.config.FlushTimeout)
			}

		case <-ticker.C:
			flush(ctx, "timeout")
		}
	}
}

func (w *BatchWriter) processBatch(ctx context.Context, envelopes []*Envelope) {
	events := make([]*domain.AnalyticsEvent, len(envelopes))
	for i, env := range envelopes {
		events[i] = env.Event
	}

	inserted, err := w.repository.InsertBatch(ctx, events)
	if err != nil {
		w.log.Error("Failed to insert batch",
			zap.Error(err),
			zap.Int("event_count", len(events)))
		w.settle(ctx, envelopes, false)
		return
	}

	if inserted != len(events) {
		w.log.Warn("Partial insert, returning batch to queue",
			zap.Int("inserted", inserted),
			zap.Int("expected", len(events)))
		w.settle(ctx, envelopes, false)
		return
	}

	w.log.Info("Inserted analytics events", zap.Int("count", inserted))
	w.settle(ctx, envelopes, true)
}

func (w *BatchWriter) settle(ctx context.Context, envelopes []*Envelope, ok bool) {
	for _, env := range envelopes {
		var err error
		if ok {
			err = env.Ack(ctx)
		} else {
			err = env.Nack(ctx)
		}
		if err != nil {
			w.log.Error("Failed to settle message",
				zap.String("message_id", env.MessageID),
				zap.Bool("ack", ok),
				zap.Error(err))
		}
	}
}
