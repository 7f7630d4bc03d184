package main

import (
	"context"
	"orderform/internal/app/consumers"
	"orderform/internal/app/deps"
	"orderform/internal/core/domain/logging"
	"os"
	"os/signal"
	"syscall"
)

// Delivers emails queued by the API when EMAIL_TRANSPORT=rabbitmq.
func main() {
	deps, shutdownDeps := deps.InitDeps()
	log := deps.Logger
	defer shutdownDeps()

	shutdownConsumers, done := consumers.InitConsumers(deps)

	stopCh, closeCh := createChannel()
	defer closeCh()

	log.Info(context.Background(), "Mailer has started.", logging.Entry("queue", deps.Config.RabbitmqEmailQueue))

	select {
	case <-stopCh:
		log.Info(context.Background(), "Stopping mailer.")
		shutdownConsumers()
		<-done
	case <-done:
		log.Warning(context.Background(), "Consumer stopped unexpectedly.")
	}
	log.Info(context.Background(), "Mailer has stopped.")
}

func createChannel() (chan os.Signal, func()) {
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	return stopCh, func() {
		close(stopCh)
	}
}
