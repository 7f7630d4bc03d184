package services

import (
	"orderform/internal/app/deps"
	"orderform/internal/core/services"
	activateuser "orderform/internal/core/services/activate_user"
	"orderform/internal/core/services/auth"
	changepassword "orderform/internal/core/services/change_password"
	checkpasswordresettoken "orderform/internal/core/services/check_password_reset_token"
	credentialchanged "orderform/internal/core/services/credential_changed"
	requestactivation "orderform/internal/core/services/request_activation"
	resetpassword "orderform/internal/core/services/reset_password"
	sendpasswordresettoken "orderform/internal/core/services/send_password_reset_token"
	signupwithemail "orderform/internal/core/services/sign_up_with_email"
)

type Services struct {
	SignUpWithEmail         services.Service[signupwithemail.Input, signupwithemail.Result]
	ActivateUser            services.Service[activateuser.Input, activateuser.Result]
	RequestActivation       services.Service[requestactivation.Input, requestactivation.Result]
	SendPasswordResetToken  services.Service[sendpasswordresettoken.Input, sendpasswordresettoken.Result]
	CheckPasswordResetToken services.Service[checkpasswordresettoken.Input, checkpasswordresettoken.Result]
	ResetPassword           services.Service[resetpassword.Input, resetpassword.Result]
	ChangePassword          services.Service[changepassword.Input, changepassword.Result]
}

func InitServices(deps *deps.Deps) *Services {
	s := &Services{}

	requestActivation := requestactivation.New(
		deps.Logger,
		deps.UnitOfWork,
		deps.TokenIssuer,
		deps.Config.Tokens(),
		deps.EmailRenderer,
		deps.EmailSender,
		deps.Now,
	)
	s.RequestActivation = auth.WithAuthentication(
		deps.SessionVerifier,
		deps.UserRepository,
		requestActivation,
	)
	s.SignUpWithEmail = signupwithemail.NewWithActivationRequest(
		deps.Logger,
		requestActivation,
		signupwithemail.New(
			deps.Logger,
			deps.UnitOfWork,
			deps.PasswordHasher,
			deps.Now,
		),
	)
	s.ActivateUser = activateuser.New(
		deps.Logger,
		deps.UnitOfWork,
		deps.TokenValidator,
		deps.Now,
	)
	s.SendPasswordResetToken = sendpasswordresettoken.New(
		deps.Logger,
		deps.UnitOfWork,
		deps.TokenIssuer,
		deps.EmailRenderer,
		deps.EmailSender,
		deps.Now,
	)
	s.CheckPasswordResetToken = checkpasswordresettoken.New(
		deps.Logger,
		deps.TokenStore,
		deps.TokenValidator,
		deps.Now,
	)
	s.ResetPassword = credentialchanged.WithNotification(
		deps.Logger,
		deps.EmailRenderer,
		deps.EmailSender,
		resetpassword.New(
			deps.Logger,
			deps.UnitOfWork,
			deps.TokenValidator,
			deps.PasswordHasher,
			deps.Now,
		),
	)
	s.ChangePassword = auth.WithAuthentication(
		deps.SessionVerifier,
		deps.UserRepository,
		credentialchanged.WithNotification(
			deps.Logger,
			deps.EmailRenderer,
			deps.EmailSender,
			changepassword.New(
				deps.Logger,
				deps.UserRepository,
				deps.PasswordHasher,
				deps.Now,
			),
		),
	)

	return s
}
