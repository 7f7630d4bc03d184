package app

import (
	"fmt"
	"net/http"
	"orderform/internal/app/deps"
	"orderform/internal/app/services"
	"orderform/internal/http/handlers/auth"
	activateuser "orderform/internal/http/handlers/auth/activate_user"
	changepassword "orderform/internal/http/handlers/auth/change_password"
	checkpasswordresettoken "orderform/internal/http/handlers/auth/check_password_reset_token"
	requestactivation "orderform/internal/http/handlers/auth/request_activation"
	resetpassword "orderform/internal/http/handlers/auth/reset_password"
	sendpasswordresettoken "orderform/internal/http/handlers/auth/send_password_reset_token"
	signupwithemail "orderform/internal/http/handlers/auth/sign_up_with_email"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func InitHttpServer(deps *deps.Deps, s *services.Services) *http.Server {
	authRouter := chi.NewRouter()
	authRouter.Method(http.MethodPost, "/signup", signupwithemail.New(s.SignUpWithEmail))
	authRouter.Method(http.MethodPost, "/activate", activateuser.New(s.ActivateUser))
	authRouter.With(auth.SetAuthTokenToContext).Method(
		http.MethodPost,
		"/activation/resend",
		requestactivation.New(s.RequestActivation),
	)
	authRouter.Method(
		http.MethodPost,
		"/password_reset/token",
		sendpasswordresettoken.New(s.SendPasswordResetToken),
	)
	authRouter.Method(
		http.MethodGet,
		"/password_reset/{token}",
		checkpasswordresettoken.New(s.CheckPasswordResetToken),
	)
	authRouter.Method(http.MethodPut, "/password_reset", resetpassword.New(s.ResetPassword))

	profileRouter := chi.NewRouter()
	profileRouter.Use(auth.SetAuthTokenToContext)
	profileRouter.Method(http.MethodPut, "/password", changepassword.New(s.ChangePassword))

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CorsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	router.Mount("/auth", authRouter)
	router.Mount("/profile", profileRouter)

	address := fmt.Sprintf("0.0.0.0:%d", deps.Config.Port)

	return &http.Server{
		Handler: router,
		Addr:    address,
	}
}
