package email

import (
	"context"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/domain/logging"
	"orderform/internal/core/domain/notification"
	"sync"
	"time"
)

// Background hands emails to the inner sender in a goroutine, so request
// latency does not depend on delivery. Failures are logged only.
type Background struct {
	log     logging.Logger
	inner   notification.EmailSender
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewBackground(log logging.Logger, inner notification.EmailSender, timeout time.Duration) *Background {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if inner == nil {
		panic(e.NewNilArgumentError("inner"))
	}
	if timeout <= 0 {
		panic(e.NewInvalidArgumentError("timeout", "must be positive"))
	}
	return &Background{log: log, inner: inner, timeout: timeout}
}

func (b *Background) Send(ctx context.Context, email notification.Email) error {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		// The request context is done as soon as the response is written.
		sendCtx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()

		if err := b.inner.Send(sendCtx, email); err != nil {
			b.log.Error(
				sendCtx,
				"Could not send email.",
				logging.Entry("err", err),
				logging.Entry("to", email.To),
				logging.Entry("subject", email.Subject),
			)
		}
	}()
	return nil
}

// Wait blocks until all started sends are finished.
func (b *Background) Wait() {
	b.wg.Wait()
}
