package consumers

import (
	"context"
	"orderform/internal/app/deps"
	dl "orderform/internal/core/domain/logging"
	emailreadyforsending "orderform/internal/rabbitmq/consumers/email_ready_for_sending"
)

func initEmailReadyForSendingConsumer(deps *deps.Deps) (func(), <-chan struct{}) {
	rabbitmqChannel, err := deps.Rabbitmq.Channel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}

	queue := deps.Config.RabbitmqEmailQueue
	if err := rabbitmqChannel.DeclareDurableQueue(queue); err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ queue.", dl.Entry("err", err))
		panic(err)
	}

	emailReadyForSendingConsumer := emailreadyforsending.New(
		deps.Logger,
		rabbitmqChannel,
		queue,
		deps.EmailDeliverer,
	)
	done, err := emailReadyForSendingConsumer.Consume()
	if err != nil {
		deps.Logger.Error(
			context.Background(),
			"Could not start RabbitMQ consuming.",
			dl.Entry("err", err),
			dl.Entry("queue", queue),
		)
		panic(err)
	}

	deps.Logger.Info(context.Background(), "Consumer has started.", dl.Entry("queue", queue))
	return func() { rabbitmqChannel.Close() }, done
}

// InitConsumers starts the consumers. The returned channel is closed once
// all of them stopped.
func InitConsumers(deps *deps.Deps) (func(), <-chan struct{}) {
	if deps.Rabbitmq == nil {
		panic("RABBITMQ_URL must be set to run consumers")
	}
	shutdownEmailReadyForSendingConsumer, done := initEmailReadyForSendingConsumer(deps)

	return func() {
		shutdownEmailReadyForSendingConsumer()
	}, done
}
