package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/peoplehub/services/automation/config"
	"example.com/peoplehub/services/automation/internal/engine"
	"example.com/peoplehub/services/automation/internal/metrics"
)

// ChangeFeedConsumer receives the data store's change-feed envelopes
// from Azure Service Bus and hands decoded events to the engine. The
// store emits events in commit order per entity; peek-lock plus
// completion-after-enqueue gives at-least-once delivery, which is why
// handlers must tolerate redelivery.
type ChangeFeedConsumer struct {
	client    *azservicebus.Client
	queueName string
	metrics   *metrics.Metrics
	batchSize int
}

// NewChangeFeedConsumer creates the change feed consumer
func NewChangeFeedConsumer(cfg config.AzureConfig, collector *metrics.Metrics) (*ChangeFeedConsumer, error) {
	if cfg.ConnectionString == "" {
		return nil, errors.New("Azure Service Bus connection string is empty")
	}

	client, err := azservicebus.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Service Bus client")
	}

	return &ChangeFeedConsumer{
		client:    client,
		queueName: cfg.ChangeFeedQueue,
		metrics:   collector,
		batchSize: 10,
	}, nil
}

// ProcessMessages consumes the change feed until the context is
// cancelled, calling handle for every decoded event. Malformed
// envelopes are completed and counted; they will never become valid on
// redelivery. A handle error abandons the message so the bus redelivers
// it.
func (c *ChangeFeedConsumer) ProcessMessages(ctx context.Context, handle func(ctx context.Context, event engine.ChangeEvent) error) error {
	receiver, err := c.client.NewReceiverForQueue(
		c.queueName,
		&azservicebus.ReceiverOptions{
			ReceiveMode: azservicebus.ReceiveModePeekLock,
		},
	)
	if err != nil {
		return errors.Wrapf(err, "failed to create receiver for queue %s", c.queueName)
	}
	defer receiver.Close(context.Background())

	log.Info().Str("queue", c.queueName).Msg("Change feed consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		messages, err := receiver.ReceiveMessages(ctx, c.batchSize, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if IsDisconnectionError(err) {
				log.Warn().Err(err).Msg("Change feed receive disconnected, retrying")
				time.Sleep(time.Second)
				continue
			}
			return errors.Wrap(err, "failed to receive change feed messages")
		}

		for _, message := range messages {
			c.processOne(ctx, receiver, message, handle)
		}
	}
}

func (c *ChangeFeedConsumer) processOne(
	ctx context.Context,
	receiver *azservicebus.Receiver,
	message *azservicebus.ReceivedMessage,
	handle func(ctx context.Context, event engine.ChangeEvent) error,
) {
	var event engine.ChangeEvent
	if err := json.Unmarshal(message.Body, &event); err != nil {
		log.Error().Err(err).Str("message_id", message.MessageID).Msg("Malformed change feed envelope, dropping")
		c.metrics.IncrementCounter(metrics.CounterEventsMalformed)
		c.complete(ctx, receiver, message)
		return
	}
	if event.Entity == "" || (event.Operation != engine.OperationInserted && event.Operation != engine.OperationUpdated) {
		log.Error().
			Str("entity", event.Entity).
			Str("op", string(event.Operation)).
			Str("message_id", message.MessageID).
			Msg("Invalid change feed envelope, dropping")
		c.metrics.IncrementCounter(metrics.CounterEventsMalformed)
		c.complete(ctx, receiver, message)
		return
	}

	if err := handle(ctx, event); err != nil {
		log.Warn().Err(err).Str("entity", event.Entity).Msg("Failed to enqueue change event, abandoning message")
		if abandonErr := receiver.AbandonMessage(ctx, message, nil); abandonErr != nil {
			log.Error().Err(abandonErr).Msg("Failed to abandon message")
		}
		return
	}

	c.complete(ctx, receiver, message)
}

func (c *ChangeFeedConsumer) complete(ctx context.Context, receiver *azservicebus.Receiver, message *azservicebus.ReceivedMessage) {
	if err := receiver.CompleteMessage(ctx, message, nil); err != nil {
		log.Error().Err(err).Str("message_id", message.MessageID).Msg("Failed to complete message")
	}
}

// Close closes the underlying Service Bus client
func (c *ChangeFeedConsumer) Close() error {
	return c.client.Close(context.Background())
}
