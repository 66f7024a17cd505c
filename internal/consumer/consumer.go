package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/Ceir-Ceir/Tanami-Leki/internal/config"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/queue"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/repository"
)

const stageBufferSize = 100

// Consumer runs the receive, parse and batch-write stages that mirror
// scored events into the analytics store
type Consumer struct {
	receiver    *Receiver
	parser      *ParserStage
	batchWriter *BatchWriter
}

// NewConsumer creates a new consumer pipeline
func NewConsumer(cfg config.Consumer, queueConsumer queue.QueueConsumer, repo repository.AnalyticsRepository, log *zap.Logger) *Consumer {
	return &Consumer{
		receiver: NewReceiver(queueConsumer, ReceiverConfig{
			MaxMessages:     10,
			WaitTimeSeconds: 20,
		}, log),
		parser: NewParserStage(queueConsumer, NewJSONEventParser(), log),
		batchWriter: NewBatchWriter(repo, BatchWriterConfig{
			MaxBatchSize: cfg.BatchSizeMax,
			FlushTimeout: time.Duration(cfg.BatchTimeoutSec) * time.Second,
		}, log),
	}
}

// Start blocks until ctx is done and every stage has drained
func (c *Consumer) Start(ctx context.Context) error {
	messages := make(chan types.Message, stageBufferSize)
	envelopes := make(chan *Envelope, stageBufferSize)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		c.receiver.Start(ctx, messages)
	}()

	go func() {
		defer wg.Done()
		c.parser.Start(ctx, messages, envelopes)
	}()

	go func() {
		defer wg.Done()
		c.batchWriter.Start(ctx, envelopes)
	}()

	wg.Wait()
	return nil
}
