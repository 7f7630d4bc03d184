package activateuser

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/domain/token"
	"orderform/internal/core/services"
	activateuser "orderform/internal/core/services/activate_user"
	"orderform/internal/http/handlers/response"

	validation "github.com/go-ozzo/ozzo-validation"
)

type Handler struct {
	service services.Service[activateuser.Input, activateuser.Result]
}

func New(service services.Service[activateuser.Input, activateuser.Result]) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

type Input struct {
	Token string `json:"token"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Token, validation.Required, validation.Length(0, 256)),
	)
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	input := Input{}
	if err := input.FromJSON(r.Body); err != nil {
		response.RenderInvalidRequestData(rw)
		return
	}
	if err := input.Validate(); err != nil {
		response.Render(rw, err, http.StatusBadRequest)
		return
	}

	_, err := h.service.Run(r.Context(), activateuser.Input{Secret: token.RawSecret(input.Token)})
	if errors.Is(err, token.ErrInvalidLink) {
		response.RenderInvalidLink(rw)
		return
	}
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	response.RenderMessage(rw, "Your account has been activated.", http.StatusOK)
}
