package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"pinmap/internal/model"
	"pinmap/internal/platform/rabbitmq"
)

var errMalformedEvent = errors.New("malformed event")

type CacheWarmer interface {
	WarmCache(ctx context.Context) error
}

// PinEventWorker consumes pin.created events and rebuilds the cached pin
// list so the next reader does not pay for the database query.
type PinEventWorker struct {
	conn      *amqp.Connection
	warmer    CacheWarmer
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPinEventWorker(conn *amqp.Connection, warmer CacheWarmer, queueName string) *PinEventWorker {
	return &PinEventWorker{
		conn:      conn,
		warmer:    warmer,
		queueName: queueName,
	}
}

func (w *PinEventWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.dispatch(workerCtx, d)
			}
		}
	}()

	return nil
}

func (w *PinEventWorker) dispatch(ctx context.Context, d amqp.Delivery) {
	err := w.handle(ctx, d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, errMalformedEvent):
		slog.WarnContext(ctx, "worker dropped event", "error", err)
		_ = d.Nack(false, false)
	default:
		slog.ErrorContext(ctx, "worker handle event failed", "error", err)
		_ = d.Nack(false, !d.Redelivered)
	}
}

func (w *PinEventWorker) handle(ctx context.Context, body []byte) error {
	var event model.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %v", errMalformedEvent, err)
	}

	switch event.Type {
	case model.EventPinCreated:
		if event.Pin == nil {
			return fmt.Errorf("%w: pin.created without pin", errMalformedEvent)
		}
		if err := w.warmer.WarmCache(ctx); err != nil {
			return fmt.Errorf("warm pin list cache failed: %w", err)
		}
		slog.DebugContext(ctx, "pin list cache warmed", "pin_id", event.Pin.ID)
		return nil
	default:
		// other event types share the queue but need no local action
		return nil
	}
}

func (w *PinEventWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
