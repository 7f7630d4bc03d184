package signupwithemail

import (
	"context"
	"errors"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/domain/logging"
	"orderform/internal/core/services"
	requestactivation "orderform/internal/core/services/request_activation"
)

type serviceWithActivationRequest struct {
	log               logging.Logger
	requestActivation services.Service[requestactivation.Input, requestactivation.Result]
	inner             services.Service[Input, Result]
}

// NewWithActivationRequest issues and mails the first activation token
// after a successful sign up. Failures are logged only, sign up still
// reports success.
func NewWithActivationRequest(
	log logging.Logger,
	requestActivation services.Service[requestactivation.Input, requestactivation.Result],
	inner services.Service[Input, Result],
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if requestActivation == nil {
		panic(e.NewNilArgumentError("requestActivation"))
	}
	if inner == nil {
		panic(e.NewNilArgumentError("inner"))
	}
	return &serviceWithActivationRequest{
		log:               log,
		requestActivation: requestActivation,
		inner:             inner,
	}
}

func (s *serviceWithActivationRequest) Run(ctx context.Context, input Input) (result Result, err error) {
	result, err = s.inner.Run(ctx, input)
	if err != nil {
		s.log.Info(ctx, "Skip requesting activation.", logging.Entry("err", err))
		return result, err
	}
	if !result.User.IsPresent {
		return result, nil
	}

	_, err = s.requestActivation.Run(ctx, requestactivation.Input{User: result.User.Value})
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not request activation for the new user.",
			logging.Entry("userId", result.User.Value.ID),
			logging.Entry("err", err),
		)
	}
	return result, nil
}
