package emailrenderer

import (
	_ "embed"
	"fmt"
	"net/url"
	"orderform/internal/core/domain/notification"
	"orderform/internal/core/domain/token"
	"orderform/internal/core/domain/user"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/golang-module/carbon/v2"
)

//go:embed templates/activation.txt
var activationTemplate string

//go:embed templates/password_reset.txt
var passwordResetTemplate string

//go:embed templates/password_changed.txt
var passwordChangedTemplate string

const unknownIP = "Unknown"

type Config struct {
	FrontendURL  string
	AppName      string
	SupportEmail string
}

type Pongo2 struct {
	config          Config
	activation      *pongo2.Template
	passwordReset   *pongo2.Template
	passwordChanged *pongo2.Template
}

func NewPongo2(config Config) *Pongo2 {
	if _, err := url.Parse(config.FrontendURL); err != nil {
		panic(fmt.Sprintf("invalid frontend url: %v", err))
	}
	return &Pongo2{
		config:          config,
		activation:      pongo2.Must(pongo2.FromString(activationTemplate)),
		passwordReset:   pongo2.Must(pongo2.FromString(passwordResetTemplate)),
		passwordChanged: pongo2.Must(pongo2.FromString(passwordChangedTemplate)),
	}
}

func (r *Pongo2) ActivationEmail(
	u user.User,
	secret token.RawSecret,
	t token.Token,
) (email notification.Email, err error) {
	link, err := r.link("activate", secret)
	if err != nil {
		return email, err
	}
	body, err := r.activation.Execute(r.context(u, pongo2.Context{
		"activation_url": link,
		"expiry_minutes": expiryMinutes(t),
	}))
	if err != nil {
		return email, fmt.Errorf("could not render activation email: %w", err)
	}
	return notification.Email{To: u.Email, Subject: r.subject("Activate Your Account"), Body: body}, nil
}

func (r *Pongo2) PasswordResetEmail(
	u user.User,
	secret token.RawSecret,
	t token.Token,
) (email notification.Email, err error) {
	link, err := r.link("reset-password/confirm", secret)
	if err != nil {
		return email, err
	}
	body, err := r.passwordReset.Execute(r.context(u, pongo2.Context{
		"reset_url":      link,
		"expiry_minutes": expiryMinutes(t),
		"ip_address":     t.Metadata.SourceIP.ValueOr(unknownIP),
		"timestamp":      humanTime(t.CreatedAt),
	}))
	if err != nil {
		return email, fmt.Errorf("could not render password reset email: %w", err)
	}
	return notification.Email{To: u.Email, Subject: r.subject("Password Reset Request"), Body: body}, nil
}

func (r *Pongo2) PasswordChangedEmail(u user.User, at time.Time) (email notification.Email, err error) {
	body, err := r.passwordChanged.Execute(r.context(u, pongo2.Context{
		"timestamp": humanTime(at),
	}))
	if err != nil {
		return email, fmt.Errorf("could not render password changed email: %w", err)
	}
	return notification.Email{To: u.Email, Subject: r.subject("Your Password Was Changed"), Body: body}, nil
}

func (r *Pongo2) context(u user.User, extra pongo2.Context) pongo2.Context {
	ctx := pongo2.Context{
		"name":          u.GetDisplayName(),
		"app_name":      r.config.AppName,
		"support_email": r.config.SupportEmail,
	}
	return ctx.Update(extra)
}

func (r *Pongo2) subject(s string) string {
	return s + " - " + r.config.AppName
}

func (r *Pongo2) link(path string, secret token.RawSecret) (string, error) {
	link, err := url.JoinPath(r.config.FrontendURL, path, string(secret))
	if err != nil {
		return "", fmt.Errorf("could not build link: %w", err)
	}
	return link + "/", nil
}

func expiryMinutes(t token.Token) int {
	return int(t.ExpiresAt.Sub(t.CreatedAt).Minutes())
}

func humanTime(t time.Time) string {
	return carbon.Time2Carbon(t).ToDayDateTimeString(carbon.UTC) + " UTC"
}
