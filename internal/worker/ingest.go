package worker

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/swiftbulk/campaign-gateway/internal/events"
	"github.com/swiftbulk/campaign-gateway/internal/model"
	"github.com/swiftbulk/campaign-gateway/internal/repository"
)

// DeliveryConsumer is the slice of the Kafka consumer the ingest loop
// depends on.
type DeliveryConsumer interface {
	Fetch(ctx context.Context) (events.Message, error)
	Commit(ctx context.Context, m events.Message) error
}

// IngestWorker folds delivery events from Kafka into the ClickHouse
// delivery log with size/time-based batch flushes. At-least-once:
// offsets commit only after a successful insert, so duplicate rows are
// possible and tolerated by the append-only log.
type IngestWorker struct {
	Consumer   DeliveryConsumer
	Deliveries repository.DeliveriesRepository

	BatchSize int           // max buffered rows per flush
	BatchWait time.Duration // max time before a partial flush

	Log *zap.Logger
}

func (w *IngestWorker) logger() *zap.Logger {
	if w.Log != nil {
		return w.Log
	}
	return zap.NewNop()
}

// Run blocks until ctx is cancelled.
func (w *IngestWorker) Run(ctx context.Context) error {
	batchSize := w.BatchSize
	if batchSize <= 0 {
		batchSize = 200
	}
	batchWait := w.BatchWait
	if batchWait <= 0 {
		batchWait = time.Second
	}

	msgCh := make(chan events.Message, batchSize)

	// Fetcher goroutine feeds the batch loop.
	go func() {
		defer close(msgCh)
		for {
			m, err := w.Consumer.Fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				w.logger().Warn("kafka fetch failed", zap.Error(err))
				time.Sleep(200 * time.Millisecond)
				continue
			}
			select {
			case msgCh <- m:
			case <-ctx.Done():
				return
			}
		}
	}()

	tick := time.NewTicker(batchWait)
	defer tick.Stop()

	var rows []model.DeliveryRow
	var pending []events.Message

	flush := func() {
		if len(rows) == 0 {
			return
		}
		if err := w.Deliveries.InsertBatch(ctx, rows); err != nil {
			// The batch stays buffered with its offsets uncommitted; the
			// insert is retried on the next flush trigger.
			w.logger().Error("delivery log insert failed, batch held for retry", zap.Error(err))
			return
		}
		for _, m := range pending {
			if err := w.Consumer.Commit(ctx, m); err != nil {
				w.logger().Warn("kafka commit failed", zap.Error(err))
			}
		}
		w.logger().Info("delivery log flushed", zap.Int("rows", len(rows)))
		rows = rows[:0]
		pending = pending[:0]
	}

	// While inserts fail, the buffer grows past batchSize; stop pulling
	// new messages once it is clearly not draining.
	maxBuffer := batchSize * 10

	for {
		in := msgCh
		if len(rows) >= maxBuffer {
			in = nil
		}

		select {
		case <-ctx.Done():
			flush()
			return ctx.Err()

		case m, ok := <-in:
			if !ok {
				flush()
				return ctx.Err()
			}
			var ev model.DeliveryEvent
			if err := json.Unmarshal(m.Value, &ev); err != nil {
				// Poison message: commit and move on.
				w.logger().Warn("bad delivery event json", zap.Error(err))
				_ = w.Consumer.Commit(ctx, m)
				continue
			}
			rows = append(rows, model.DeliveryRow{
				CampaignID: ev.CampaignID,
				Position:   ev.Position,
				Phone:      ev.Phone,
				Country:    ev.Country.String(),
				Status:     ev.Status.String(),
				Attempts:   ev.Attempts,
				HTTPCode:   ev.HTTPCode,
				Error:      ev.Error,
				OccurredAt: ev.OccurredAt,
			})
			pending = append(pending, m)
			if len(rows) >= batchSize {
				flush()
			}

		case <-tick.C:
			flush()
		}
	}
}
