package requestactivation

import (
	"errors"
	"net/http"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/domain/token"
	"orderform/internal/core/domain/user"
	"orderform/internal/core/services"
	requestactivation "orderform/internal/core/services/request_activation"
	"orderform/internal/http/handlers/response"
)

type Handler struct {
	service services.Service[requestactivation.Input, requestactivation.Result]
}

func New(service services.Service[requestactivation.Input, requestactivation.Result]) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

type Response struct {
	AlreadyActivated bool `json:"already_activated"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	result, err := h.service.Run(r.Context(), requestactivation.Input{})

	var cooldown *token.CooldownActiveError
	switch {
	case errors.As(err, &cooldown):
		response.RenderCooldown(rw, cooldown.RemainingSeconds(), cooldown.RetryAfterSeconds())
		return
	case errors.Is(err, user.ErrInvalidSessionToken):
		response.RenderUnauthorized(rw)
		return
	case errors.Is(err, user.ErrUserIsNotEnabled):
		response.RenderError(rw, "user is not enabled", http.StatusForbidden)
		return
	case err != nil:
		response.RenderInternalError(rw)
		return
	}

	response.Render(rw, Response{AlreadyActivated: result.AlreadyActivated}, http.StatusOK)
}
