package config

import (
	"fmt"
	"orderform/internal/core/domain/token"
	"time"

	"github.com/caarlos0/env/v6"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	TokenStorePostgres = "postgres"
	TokenStoreRedis    = "redis"

	EmailTransportSES      = "ses"
	EmailTransportRabbitmq = "rabbitmq"
	EmailTransportLog      = "log"
)

type Config struct {
	Port    uint16 `env:"PORT" envDefault:"8000"`
	IsDebug bool   `env:"DEBUG" envDefault:"false"`

	Secret           string `env:"SECRET,required"`
	BcryptHasherCost int    `env:"BCRYPT_HASHER_COST" envDefault:"10"`

	PostgresqlURL string `env:"POSTGRESQL_URL,required"`
	AutoMigrate   bool   `env:"AUTO_MIGRATE" envDefault:"false"`

	TokenStore          string        `env:"TOKEN_STORE" envDefault:"postgres"`
	RedisURL            string        `env:"REDIS_URL"`
	RedisKeyPrefix      string        `env:"REDIS_KEY_PREFIX" envDefault:"orderform:"`
	RedisTokenRetention time.Duration `env:"REDIS_TOKEN_RETENTION" envDefault:"24h"`

	PasswordResetTTL         time.Duration `env:"PASSWORD_RESET_TOKEN_TTL" envDefault:"10m"`
	ActivationTTL            time.Duration `env:"ACTIVATION_TOKEN_TTL" envDefault:"10m"`
	ActivationResendCooldown time.Duration `env:"ACTIVATION_RESEND_COOLDOWN" envDefault:"60s"`

	FrontendURL  string `env:"FRONTEND_URL,required"`
	AppName      string `env:"APP_NAME" envDefault:"Order Form"`
	SupportEmail string `env:"SUPPORT_EMAIL,required"`

	EmailTransport   string        `env:"EMAIL_TRANSPORT" envDefault:"ses"`
	EmailSendTimeout time.Duration `env:"EMAIL_SEND_TIMEOUT" envDefault:"30s"`
	AwsRegion      string `env:"AWS_REGION"`
	AwsAccessKey   string `env:"AWS_ACCESS_KEY"`
	AwsSecretKey   string `env:"AWS_SECRET_KEY"`
	AwsEmailSender string `env:"AWS_EMAIL_SENDER"`

	RabbitmqURL        string `env:"RABBITMQ_URL"`
	RabbitmqEmailQueue string `env:"RABBITMQ_EMAIL_QUEUE" envDefault:"emails"`

	SessionSecret string `env:"SESSION_SECRET,required"`
	SessionIssuer string `env:"SESSION_ISSUER"`

	CorsAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

func Load() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("could not parse config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

func (c Config) Validate() error {
	// The mailer delivers rabbitmq queued emails through SES.
	needsAws := c.EmailTransport == EmailTransportSES || c.EmailTransport == EmailTransportRabbitmq
	err := validation.ValidateStruct(&c,
		validation.Field(&c.BcryptHasherCost, validation.Min(4), validation.Max(31)),
		validation.Field(&c.TokenStore, validation.In(TokenStorePostgres, TokenStoreRedis)),
		validation.Field(&c.RedisURL, requiredIf(c.TokenStore == TokenStoreRedis)...),
		validation.Field(&c.FrontendURL, validation.Required, is.URL),
		validation.Field(&c.SupportEmail, validation.Required, is.Email),
		validation.Field(
			&c.EmailTransport,
			validation.In(EmailTransportSES, EmailTransportRabbitmq, EmailTransportLog),
		),
		validation.Field(&c.AwsRegion, requiredIf(needsAws)...),
		validation.Field(&c.AwsEmailSender, append(requiredIf(needsAws), is.Email)...),
		validation.Field(&c.RabbitmqURL, requiredIf(c.EmailTransport == EmailTransportRabbitmq)...),
		validation.Field(&c.RabbitmqEmailQueue, validation.Required),
		validation.Field(&c.EmailSendTimeout, validation.Required, validation.Min(time.Second)),
	)
	if err != nil {
		return err
	}
	return c.Tokens().Validate()
}

func requiredIf(condition bool) []validation.Rule {
	if condition {
		return []validation.Rule{validation.Required}
	}
	return []validation.Rule{}
}

func (c Config) Tokens() token.Config {
	return token.Config{
		PasswordResetTTL:         c.PasswordResetTTL,
		ActivationTTL:            c.ActivationTTL,
		ActivationResendCooldown: c.ActivationResendCooldown,
	}
}
