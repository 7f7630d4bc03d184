package sendpasswordresettoken

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	c "orderform/internal/core/domain/common"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/services"
	sendpasswordresettoken "orderform/internal/core/services/send_password_reset_token"
	"orderform/internal/http/handlers/response"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	SUCCESS_MESSAGE      = "If an account with that email exists, a password reset link has been sent."
	USER_AGENT_MAX_LEN   = 512
	X_FORWARDED_FOR_NAME = "X-Forwarded-For"
)

type Handler struct {
	service services.Service[sendpasswordresettoken.Input, sendpasswordresettoken.Result]
}

func New(
	service services.Service[sendpasswordresettoken.Input, sendpasswordresettoken.Result],
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

type Input struct {
	Email string `json:"email"`
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
	)
}

// ServeHTTP never tells whether the email belongs to an account.
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

	userAgent := r.UserAgent()
	if len(userAgent) > USER_AGENT_MAX_LEN {
		userAgent = userAgent[:USER_AGENT_MAX_LEN]
	}
	_, err := h.service.Run(
		r.Context(),
		sendpasswordresettoken.Input{
			Email:     c.NewEmail(input.Email),
			SourceIP:  ClientIP(r),
			UserAgent: userAgent,
		},
	)
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	response.RenderMessage(rw, SUCCESS_MESSAGE, http.StatusOK)
}

// ClientIP takes the first X-Forwarded-For entry, else the remote address.
func ClientIP(r *http.Request) c.Optional[string] {
	if forwarded := r.Header.Get(X_FORWARDED_FOR_NAME); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if ip := net.ParseIP(first); ip != nil {
			return c.Some(ip.String())
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := net.ParseIP(host); ip != nil {
		return c.Some(ip.String())
	}
	return c.None[string]()
}
