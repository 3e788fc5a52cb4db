package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/cliniktrak/ambulance-dispatch/internal/domain/models"
	"github.com/cliniktrak/ambulance-dispatch/pkg/logger"
	wrap "github.com/cliniktrak/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/cliniktrak/ambulance-dispatch/pkg/metrics"
	"github.com/cliniktrak/ambulance-dispatch/pkg/rabbit"
)

const (
	TrackingExchange = "tracking_topic"

	// QueueLocationUpdate is the inbound path for high-frequency position
	// reports from vehicle units that bypass HTTP.
	QueueLocationUpdate = "location_updates"
)

const serviceName = "tracking"

// TrackingBroker mirrors position snapshots to the broker and consumes
// raw position reports from vehicle units.
type TrackingBroker struct {
	client   *rabbit.RabbitMQ
	exchange string

	l logger.Logger
}

func NewTrackingBroker(client *rabbit.RabbitMQ, log logger.Logger) *TrackingBroker {
	return &TrackingBroker{
		client:   client,
		exchange: TrackingExchange,
		l:        log,
	}
}

// Setup declares the tracking exchange and the inbound location queue.
// Vehicle units publish raw reports straight to the queue; mirrored
// snapshots go out through the exchange.
func (b *TrackingBroker) Setup(ctx context.Context) error {
	if err := b.client.Channel.ExchangeDeclare(b.exchange, "topic", true, false, false, false, nil); err != nil {
		return wrap.Error(ctx, fmt.Errorf("declare exchange failed: %w", err))
	}
	if _, err := b.client.Channel.QueueDeclare(QueueLocationUpdate, true, false, false, false, nil); err != nil {
		return wrap.Error(ctx, fmt.Errorf("declare queue failed: %w", err))
	}
	return nil
}

// MirrorLocation publishes the snapshot to the tracking exchange with the
// key 'ambulance.location.{id}', so external consumers can bind either a
// single vehicle or the whole fleet.
func (b *TrackingBroker) MirrorLocation(ctx context.Context, e models.LocationEvent) error {
	ctx = wrap.WithAction(ctx, "rabbitmq_publish_location")

	if err := b.client.EnsureConnection(ctx); err != nil {
		b.l.Error(ctx, "ensure connection failed", err)
		return wrap.Error(ctx, err)
	}

	body, err := json.Marshal(e)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to marshal message: %w", err))
	}

	key := fmt.Sprintf("ambulance.location.%s", e.AmbulanceID)

	err = retry(5, time.Second, func() error {
		return b.client.Channel.PublishWithContext(
			ctx,
			b.exchange, // exchange
			key,        // routing key
			false,      // mandatory
			false,      // immediate
			amqp091.Publishing{
				ContentType: "application/json",
				Body:        body,
				Timestamp:   time.Now(),
			},
		)
	})
	metrics.RecordRabbitMQPublish(serviceName, b.exchange, err)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to publish with context: %w", err))
	}

	return nil
}

type LocationUpdateHandler func(ctx context.Context, msg models.LocationUpdateMessage) error

// ConsumeLocationUpdates reads raw position reports from the location
// queue and feeds them to the handler. It reconnects on broker loss and
// only returns when the context is cancelled.
func (b *TrackingBroker) ConsumeLocationUpdates(ctx context.Context, handler LocationUpdateHandler) error {
	ctx = wrap.WithAction(ctx, "rabbitmq_consume_location_update")

	for {
		if ctx.Err() != nil {
			b.l.Debug(ctx, "consume location update stopped by context")
			return nil
		}

		if err := b.client.EnsureConnection(ctx); err != nil {
			b.l.Error(ctx, "ensure connection failed", err)
			time.Sleep(2 * time.Second)
			continue
		}

		// Make sure topology exists before subscribing.
		if err := b.Setup(ctx); err != nil {
			b.l.Error(ctx, "declare topology failed", err)
			time.Sleep(3 * time.Second)
			continue
		}

		msgs, err := b.client.Channel.Consume(QueueLocationUpdate, "", false, false, false, false, nil)
		if err != nil {
			b.l.Error(ctx, "consume failed", err)
			time.Sleep(2 * time.Second)
			continue
		}

		b.l.Info(ctx, "start consuming location updates", "queue", QueueLocationUpdate)

	consumeLoop:
		for {
			select {
			case <-ctx.Done():
				b.l.Info(ctx, "location update consumer shutting down")
				return nil

			case msg, ok := <-msgs:
				if !ok {
					b.l.Warn(ctx, "message channel closed, reconnecting...")
					time.Sleep(2 * time.Second)
					continue consumeLoop
				}

				// handle each message in its own goroutine
				go func(d amqp091.Delivery) {
					var req models.LocationUpdateMessage
					if err := json.Unmarshal(d.Body, &req); err != nil {
						b.l.Error(ctx, "failed to unmarshal location update", err)
						metrics.RecordRabbitMQConsume(serviceName, QueueLocationUpdate, err)
						_ = d.Nack(false, false)
						return
					}

					ctxx := wrap.WithRequestID(ctx, d.CorrelationId)

					err := handler(ctxx, req)
					metrics.RecordRabbitMQConsume(serviceName, QueueLocationUpdate, err)
					if err != nil {
						b.l.Error(wrap.ErrorCtx(ctx, err), "failed to handle location update", err)
						if isRecoverableError(err) {
							_ = d.Nack(false, true) // requeue
						} else {
							_ = d.Nack(false, false) // discard / dead-letter
						}
						return
					}

					if err := d.Ack(false); err != nil {
						b.l.Error(ctx, "failed to ack message", err)
					}
				}(msg)
			}
		}
	}
}
