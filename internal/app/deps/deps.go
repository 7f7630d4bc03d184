package deps

import (
	"context"
	"orderform/internal/config"
	dl "orderform/internal/core/domain/logging"
	"orderform/internal/core/domain/notification"
	"orderform/internal/core/domain/token"
	duow "orderform/internal/core/domain/unit_of_work"
	"orderform/internal/core/domain/user"
	"orderform/internal/db/migrations"
	dbtoken "orderform/internal/db/token"
	uow "orderform/internal/db/unit_of_work"
	dbuser "orderform/internal/db/user"
	"orderform/internal/implementations/email"
	emailrenderer "orderform/internal/implementations/email_renderer"
	"orderform/internal/implementations/logging"
	passwordhasher "orderform/internal/implementations/password_hasher"
	"orderform/internal/implementations/session"
	tokencodec "orderform/internal/implementations/token_codec"
	"orderform/internal/rabbitmq"
	emailoutbox "orderform/internal/rabbitmq/publishers/email_outbox"
	tokenstore "orderform/internal/redis/token_store"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/go-redis/redis/v9"
	"github.com/jackc/pgx/v4/pgxpool"
)

type Deps struct {
	Config    *config.Config
	AwsConfig aws.Config
	Logger    dl.Logger

	DB       *pgxpool.Pool
	Redis    *redis.Client
	Rabbitmq *rabbitmq.Connection

	Now func() time.Time

	UnitOfWork     duow.UnitOfWork
	UserRepository user.UserRepository
	TokenStore     token.Store

	TokenCodec     token.Codec
	TokenIssuer    *token.Issuer
	TokenValidator *token.Validator

	PasswordHasher  user.PasswordHasher
	SessionVerifier user.SessionVerifier

	EmailRenderer notification.Renderer
	// EmailSender is what services hand rendered emails to.
	EmailSender notification.EmailSender
	// EmailDeliverer actually delivers; the mailer drains the outbox into it.
	EmailDeliverer notification.EmailSender
}

func InitDeps() (*Deps, func()) {
	deps := &Deps{}

	deps.initConfig()
	deps.initAwsConfig()

	closeLogger := deps.initLogger()
	closePgxPool := deps.initPgxPool()
	closeRedisClient := deps.initRedisClient()
	closeRabbitmqConn := deps.initRabbitmqConnection()

	deps.Now = func() time.Time { return time.Now().UTC() }

	deps.initTokenStorage()
	deps.UserRepository = dbuser.NewPgxRepository(deps.DB)

	deps.TokenCodec = tokencodec.NewSHA256()
	deps.TokenIssuer = token.NewIssuer(deps.TokenCodec, deps.Config.Tokens())
	deps.TokenValidator = token.NewValidator(deps.TokenCodec)

	deps.PasswordHasher = passwordhasher.NewBcrypt(deps.Config.Secret, deps.Config.BcryptHasherCost)
	deps.SessionVerifier = session.NewJWT(deps.Config.SessionSecret, deps.Config.SessionIssuer)

	deps.EmailRenderer = emailrenderer.NewPongo2(emailrenderer.Config{
		FrontendURL:  deps.Config.FrontendURL,
		AppName:      deps.Config.AppName,
		SupportEmail: deps.Config.SupportEmail,
	})
	deps.EmailDeliverer = deps.initEmailDeliverer()
	closeEmailOutbox := deps.initEmailSender()

	return deps, func() {
		closeFuncs := []func(){
			closeEmailOutbox,
			closeRabbitmqConn,
			closeRedisClient,
			closePgxPool,
			closeLogger,
		}

		var wg sync.WaitGroup
		wg.Add(len(closeFuncs))
		for _, closeFunc := range closeFuncs {
			closeFunc := closeFunc
			go func() {
				closeFunc()
				wg.Done()
			}()
		}

		wg.Wait()
	}
}

func (deps *Deps) initConfig() {
	config, err := config.Load()
	if err != nil {
		panic(err)
	}
	deps.Config = config
}

func (deps *Deps) initAwsConfig() {
	cfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(deps.Config.AwsRegion),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				deps.Config.AwsAccessKey,
				deps.Config.AwsSecretKey,
				"",
			),
		),
		awsConfig.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(
				retry.AddWithMaxBackoffDelay(retry.NewStandard(), time.Second*5),
				3,
			)
		}),
	)
	if err != nil {
		panic(err)
	}
	deps.AwsConfig = cfg
}

func (deps *Deps) initLogger() func() {
	logger := logging.NewZapLogger(deps.Config.IsDebug)
	deps.Logger = logger
	return func() { logger.Sync() }
}

func (deps *Deps) initPgxPool() func() {
	if deps.Config.AutoMigrate {
		if err := migrations.Up(deps.Config.PostgresqlURL); err != nil {
			deps.Logger.Error(context.Background(), "Could not apply migrations.", dl.Entry("err", err))
			panic(err)
		}
		deps.Logger.Info(context.Background(), "Migrations applied.")
	}

	db, err := pgxpool.Connect(context.Background(), deps.Config.PostgresqlURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to DB.", dl.Entry("err", err))
		panic(err)
	}
	deps.DB = db
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down DB connection.")
		db.Close()
		deps.Logger.Info(context.Background(), "DB connection shut down.")
	}
}

func (deps *Deps) initRedisClient() func() {
	if deps.Config.TokenStore != config.TokenStoreRedis {
		return func() {}
	}

	redisOpt, err := redis.ParseURL(deps.Config.RedisURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to Redis.", dl.Entry("err", err))
		panic(err)
	}
	redisClient := redis.NewClient(redisOpt)
	deps.Redis = redisClient
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down Redis client.")
		redisClient.Close()
		deps.Logger.Info(context.Background(), "Redis client shut down.")
	}
}

func (deps *Deps) initRabbitmqConnection() func() {
	if deps.Config.RabbitmqURL == "" {
		return func() {}
	}

	rabbitmqConnection, err := rabbitmq.Dial(deps.Config.RabbitmqURL, deps.Logger)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to RabbitMQ.", dl.Entry("err", err))
		panic("could not connect to RabbitMQ")
	}
	deps.Rabbitmq = rabbitmqConnection
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down RabbitMQ connection.")
		rabbitmqConnection.Close()
		deps.Logger.Info(context.Background(), "RabbitMQ connection shut down.")
	}
}

func (deps *Deps) initTokenStorage() {
	switch deps.Config.TokenStore {
	case config.TokenStoreRedis:
		store := tokenstore.NewRedis(deps.Redis, deps.Config.RedisKeyPrefix, deps.Config.RedisTokenRetention)
		deps.TokenStore = store
		deps.UnitOfWork = uow.NewPgxUnitOfWorkWithTokenStore(deps.DB, store)
	default:
		deps.TokenStore = dbtoken.NewPgxTokenStore(deps.DB)
		deps.UnitOfWork = uow.NewPgxUnitOfWork(deps.DB)
	}
	deps.Logger.Info(context.Background(), "Token store selected.", dl.Entry("store", deps.Config.TokenStore))
}

func (deps *Deps) initEmailDeliverer() notification.EmailSender {
	if deps.Config.EmailTransport == config.EmailTransportLog {
		return email.NewLogSender(deps.Logger, deps.Config.IsDebug)
	}
	return email.NewSESSender(deps.AwsConfig, deps.Config.AwsEmailSender)
}

func (deps *Deps) initEmailSender() func() {
	switch deps.Config.EmailTransport {
	case config.EmailTransportRabbitmq:
		return deps.initRabbitmqEmailOutbox()
	case config.EmailTransportSES:
		background := email.NewBackground(deps.Logger, deps.EmailDeliverer, deps.Config.EmailSendTimeout)
		deps.EmailSender = background
		return func() {
			deps.Logger.Info(context.Background(), "Waiting for pending emails.")
			background.Wait()
			deps.Logger.Info(context.Background(), "Pending emails sent.")
		}
	default:
		deps.EmailSender = deps.EmailDeliverer
	}
	return func() {}
}

func (deps *Deps) initRabbitmqEmailOutbox() func() {
	rabbitmqChannel, err := deps.Rabbitmq.Channel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}
	if err := rabbitmqChannel.DeclareDurableQueue(deps.Config.RabbitmqEmailQueue); err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ queue.", dl.Entry("err", err))
		panic(err)
	}

	deps.EmailSender = emailoutbox.NewRabbitMQ(
		deps.Logger,
		rabbitmqChannel,
		deps.Config.RabbitmqEmailQueue,
		deps.Now,
	)

	return func() {
		deps.Logger.Info(context.Background(), "Shutting down email outbox.")
		rabbitmqChannel.Close()
		deps.Logger.Info(context.Background(), "Email outbox shut down.")
	}
}
