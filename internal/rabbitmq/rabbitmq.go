package rabbitmq

import (
	"context"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/domain/logging"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const reconnectDelay = 3 * time.Second

// Connection wraps amqp.Connection and redials when the broker drops it.
type Connection struct {
	*amqp.Connection
	log logging.Logger
}

func Dial(url string, log logging.Logger) (*Connection, error) {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	connection := &Connection{Connection: conn, log: log}
	go connection.watch(url)
	return connection, nil
}

func (c *Connection) watch(url string) {
	ctx := context.Background()
	for {
		reason, ok := <-c.Connection.NotifyClose(make(chan *amqp.Error))
		if !ok {
			c.log.Info(ctx, "RabbitMQ connection closed.")
			return
		}
		c.log.Warning(ctx, "RabbitMQ connection lost.", logging.Entry("reason", reason.Error()))
		retry(ctx, c.log, "RabbitMQ reconnect", func() error {
			conn, err := amqp.Dial(url)
			if err == nil {
				c.Connection = conn
			}
			return err
		})
	}
}

// Channel opens a channel that is recreated after a broker side close.
func (c *Connection) Channel() (*Channel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	channel := &Channel{Channel: ch, log: c.log}
	go channel.watch(c)
	return channel, nil
}

type Channel struct {
	*amqp.Channel
	closed int32
	log    logging.Logger
}

func (ch *Channel) watch(conn *Connection) {
	ctx := context.Background()
	for {
		reason, ok := <-ch.Channel.NotifyClose(make(chan *amqp.Error))
		if !ok || ch.IsClosed() {
			// Sets the flag when the connection went away first.
			ch.Close()
			return
		}
		ch.log.Warning(ctx, "RabbitMQ channel lost.", logging.Entry("reason", reason.Error()))
		retry(ctx, ch.log, "RabbitMQ channel recreate", func() error {
			recreated, err := conn.Connection.Channel()
			if err == nil {
				ch.Channel = recreated
			}
			return err
		})
	}
}

// IsClosed reports whether Close was called by the application.
func (ch *Channel) IsClosed() bool {
	return atomic.LoadInt32(&ch.closed) == 1
}

func (ch *Channel) Close() error {
	if !atomic.CompareAndSwapInt32(&ch.closed, 0, 1) {
		return amqp.ErrClosed
	}
	return ch.Channel.Close()
}

// DeclareDurableQueue declares a durable queue bound to the default exchange.
func (ch *Channel) DeclareDurableQueue(name string) error {
	_, err := ch.Channel.QueueDeclare(name, true, false, false, false, nil)
	return err
}

// Consume keeps consuming across channel recreation. The returned channel
// is closed only after Close.
func (ch *Channel) Consume(
	queue, consumer string,
	autoAck, exclusive, noLocal, noWait bool,
	args amqp.Table,
) (<-chan amqp.Delivery, error) {
	deliveries := make(chan amqp.Delivery)

	go func() {
		defer close(deliveries)
		ctx := context.Background()
		for {
			d, err := ch.Channel.Consume(queue, consumer, autoAck, exclusive, noLocal, noWait, args)
			if err != nil {
				ch.log.Error(ctx, "Consume failed.", logging.Entry("err", err), logging.Entry("queue", queue))
				time.Sleep(reconnectDelay)
				continue
			}

			for msg := range d {
				deliveries <- msg
			}

			// The closed flag may be set only after the delivery channel ends.
			time.Sleep(reconnectDelay)
			if ch.IsClosed() {
				ch.log.Info(ctx, "Channel is closed, stop consuming.", logging.Entry("queue", queue))
				return
			}
		}
	}()

	return deliveries, nil
}

func retry(ctx context.Context, log logging.Logger, what string, fn func() error) {
	for {
		time.Sleep(reconnectDelay)
		err := fn()
		if err == nil {
			log.Info(ctx, what+" succeeded.")
			return
		}
		log.Error(ctx, what+" failed.", logging.Entry("err", err))
	}
}
