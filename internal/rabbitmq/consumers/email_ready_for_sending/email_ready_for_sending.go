package emailreadyforsending

import (
	"context"
	"orderform/internal/core/domain/common"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/domain/logging"
	"orderform/internal/core/domain/notification"
	"orderform/internal/rabbitmq/schema"

	"github.com/rabbitmq/amqp091-go"
)

type consumer interface {
	Consume(
		queue, consumer string,
		autoAck, exclusive, noLocal, noWait bool,
		args amqp091.Table,
	) (<-chan amqp091.Delivery, error)
}

// Consumer delivers queued emails. A failed delivery is requeued once.
type Consumer struct {
	log     logging.Logger
	channel consumer
	queue   string
	sender  notification.EmailSender
}

func New(
	log logging.Logger,
	channel consumer,
	queue string,
	sender notification.EmailSender,
) *Consumer {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	if queue == "" {
		panic(e.NewInvalidArgumentError("queue", "must not be empty"))
	}
	if sender == nil {
		panic(e.NewNilArgumentError("sender"))
	}
	return &Consumer{log: log, channel: channel, queue: queue, sender: sender}
}

// Consume returns a channel that is closed when the deliveries run out.
func (c *Consumer) Consume() (<-chan struct{}, error) {
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		c.log.Error(context.Background(), "Could not start consuming.", logging.Entry("err", err))
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for delivery := range deliveries {
			c.handle(context.Background(), delivery)
		}
	}()
	return done, nil
}

func (c *Consumer) handle(ctx context.Context, delivery amqp091.Delivery) {
	message := &schema.Email{}
	if err := message.Unmarshal(delivery.Body); err != nil {
		c.log.Error(
			ctx,
			"Could not unmarshal email.",
			logging.Entry("err", err),
			logging.Entry("deliveryTag", delivery.DeliveryTag),
		)
		c.ack(ctx, delivery)
		return
	}

	err := c.sender.Send(ctx, notification.Email{
		To:      common.NewEmail(message.To),
		Subject: message.Subject,
		Body:    message.Body,
	})
	if err != nil {
		c.log.Error(
			ctx,
			"Could not send email.",
			logging.Entry("err", err),
			logging.Entry("subject", message.Subject),
			logging.Entry("redelivered", delivery.Redelivered),
		)
		if err := delivery.Nack(false, !delivery.Redelivered); err != nil {
			c.log.Error(ctx, "Could not NACK AMQP message.", logging.Entry("err", err))
		}
		return
	}

	c.log.Info(ctx, "Email has been sent.", logging.Entry("subject", message.Subject))
	c.ack(ctx, delivery)
}

func (c *Consumer) ack(ctx context.Context, delivery amqp091.Delivery) {
	if err := delivery.Ack(false); err != nil {
		c.log.Error(ctx, "Could not ACK AMQP message.", logging.Entry("err", err))
	}
}
