package signupwithemail

import (
	"encoding/json"
	"io"
	"net/http"
	c "orderform/internal/core/domain/common"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/domain/user"
	"orderform/internal/core/services"
	signupwithemail "orderform/internal/core/services/sign_up_with_email"
	"orderform/internal/http/handlers/response"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const SUCCESS_MESSAGE = "Registration received. Check your email to activate your account."

type Handler struct {
	service services.Service[signupwithemail.Input, signupwithemail.Result]
}

func New(service services.Service[signupwithemail.Input, signupwithemail.Result]) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

type Input struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FromJSON decodes the body and normalizes the email before validation.
func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	if err := e.Decode(i); err != nil {
		return err
	}
	i.Email = string(c.NewEmail(i.Email))
	return nil
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Email, validation.Required, is.Email, validation.Length(0, 254)),
		validation.Field(&i.Password, validation.Required, validation.Length(8, 256)),
		validation.Field(&i.Username, validation.Length(0, 150)),
		validation.Field(&i.FirstName, validation.Length(0, 150)),
		validation.Field(&i.LastName, validation.Length(0, 150)),
	)
}

// ServeHTTP answers the same way whether the email is taken or not.
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

	_, err := h.service.Run(
		r.Context(),
		signupwithemail.Input{
			Email:     c.NewEmail(input.Email),
			Password:  user.RawPassword(input.Password),
			Username:  input.Username,
			FirstName: input.FirstName,
			LastName:  input.LastName,
		},
	)
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	response.RenderMessage(rw, SUCCESS_MESSAGE, http.StatusCreated)
}
