package email

import (
	"context"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/domain/logging"
	"orderform/internal/core/domain/notification"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

const charset = "UTF-8"

type sesClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESSender struct {
	ses sesClient
	// This address must be verified with Amazon SES.
	sender string
}

func NewSESSender(awsConfig aws.Config, sender string) *SESSender {
	return &SESSender{ses: ses.NewFromConfig(awsConfig), sender: sender}
}

func (s *SESSender) Send(ctx context.Context, email notification.Email) error {
	_, err := s.ses.SendEmail(
		ctx,
		&ses.SendEmailInput{
			Source: aws.String(s.sender),
			Destination: &types.Destination{
				CcAddresses: []string{},
				ToAddresses: []string{string(email.To)},
			},
			Message: &types.Message{
				Subject: &types.Content{Data: aws.String(email.Subject), Charset: aws.String(charset)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(email.Body), Charset: aws.String(charset)},
				},
			},
		},
	)
	return err
}

// LogSender only logs outgoing emails. Used in local development.
// Bodies carry raw token links, so they are logged at debug level only and
// only when withBody is set.
type LogSender struct {
	log      logging.Logger
	withBody bool
}

func NewLogSender(log logging.Logger, withBody bool) *LogSender {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	return &LogSender{log: log, withBody: withBody}
}

func (s *LogSender) Send(ctx context.Context, email notification.Email) error {
	s.log.Info(
		ctx,
		"Email is not sent, log transport is used.",
		logging.Entry("to", email.To),
		logging.Entry("subject", email.Subject),
	)
	if s.withBody {
		s.log.Debug(ctx, "Email body.", logging.Entry("to", email.To), logging.Entry("body", email.Body))
	}
	return nil
}
