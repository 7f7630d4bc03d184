package emailoutbox

import (
	"context"
	"errors"
	"orderform/internal/core/domain/logging"
	"orderform/internal/core/domain/notification"
	"orderform/internal/rabbitmq/schema"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

var Now = time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type stubChannel struct {
	published   []published
	returnError error
}

func (c *stubChannel) PublishWithContext(
	ctx context.Context,
	exchange, key string,
	mandatory, immediate bool,
	msg amqp091.Publishing,
) error {
	if c.returnError != nil {
		return c.returnError
	}
	c.published = append(c.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func TestEmailIsPublishedToQueue(t *testing.T) {
	// Setup ---
	channel := &stubChannel{}
	log := logging.NewFakeLogger()
	outbox := NewRabbitMQ(log, channel, "emails", func() time.Time { return Now })

	// Exercise ---
	err := outbox.Send(context.Background(), notification.Email{
		To:      "john@example.com",
		Subject: "Hello",
		Body:    "Body",
	})

	// Verify ---
	require.NoError(t, err)
	require.Len(t, channel.published, 1)
	p := channel.published[0]
	require.Equal(t, "", p.exchange)
	require.Equal(t, "emails", p.key)
	require.Equal(t, amqp091.Persistent, p.msg.DeliveryMode)

	message := schema.Email{}
	require.NoError(t, message.Unmarshal(p.msg.Body))
	require.Equal(t, schema.Email{To: "john@example.com", Subject: "Hello", Body: "Body", EnqueuedAt: Now}, message)
}

func TestPublishError(t *testing.T) {
	// Setup ---
	channel := &stubChannel{returnError: errors.New("channel closed")}
	log := logging.NewFakeLogger()
	outbox := NewRabbitMQ(log, channel, "emails", func() time.Time { return Now })

	// Exercise ---
	err := outbox.Send(context.Background(), notification.Email{To: "john@example.com"})

	// Verify ---
	require.EqualError(t, err, "channel closed")
	require.Equal(t, 1, log.Count(logging.ERROR))
}
