package checkpasswordresettoken

import (
	"errors"
	"net/http"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/domain/token"
	"orderform/internal/core/services"
	checkpasswordresettoken "orderform/internal/core/services/check_password_reset_token"
	"orderform/internal/http/handlers/response"
	"time"

	"github.com/go-chi/chi/v5"
)

const TOKEN_MAX_LEN = 256

type Handler struct {
	service services.Service[checkpasswordresettoken.Input, checkpasswordresettoken.Result]
}

func New(
	service services.Service[checkpasswordresettoken.Input, checkpasswordresettoken.Result],
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

type Response struct {
	Valid     bool      `json:"valid"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	secret := chi.URLParam(r, "token")
	if secret == "" || len(secret) > TOKEN_MAX_LEN {
		response.RenderInvalidLink(rw)
		return
	}

	result, err := h.service.Run(r.Context(), checkpasswordresettoken.Input{Secret: token.RawSecret(secret)})
	if errors.Is(err, token.ErrInvalidLink) {
		response.RenderInvalidLink(rw)
		return
	}
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	response.Render(rw, Response{Valid: true, ExpiresAt: result.ExpiresAt}, http.StatusOK)
}
