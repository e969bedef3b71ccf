package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"pinmap/internal/app"
	"pinmap/internal/cache"
	"pinmap/internal/config"
	mysqlClient "pinmap/internal/platform/mysql"
	rabbitmqClient "pinmap/internal/platform/rabbitmq"
	redisClient "pinmap/internal/platform/redis"
	"pinmap/internal/repository"
	"pinmap/internal/transport/http/handler"
	"pinmap/internal/worker"
)

// App owns every process-wide handle. It is built once in New and released
// by Close.
type App struct {
	Config    *config.Config
	MySQL     *gorm.DB
	Redis     *redis.Client
	MQConn    *amqp.Connection
	PinWorker *worker.PinEventWorker

	AuthService *app.AuthService
	PinService  *app.PinService

	StartedAt time.Time
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, StartedAt: time.Now()}
	ready := false
	defer func() {
		if !ready {
			_ = a.Close()
		}
	}()

	var err error
	a.MySQL, err = mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := repository.AutoMigrate(ctx, a.MySQL); err != nil {
		return nil, err
	}

	a.Redis, err = redisClient.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}

	a.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.App.Name)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(a.MySQL)
	pinRepo := repository.NewPinRepository(a.MySQL)
	pinCache := cache.NewPinCache(a.Redis, time.Duration(cfg.Redis.PinListTTLSeconds)*time.Second)
	publisher := rabbitmqClient.NewEventPublisher(a.MQConn, cfg.RabbitMQ.PinEventQueue)

	a.AuthService = app.NewAuthService(
		userRepo,
		publisher,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
		cfg.Auth.BcryptCost,
	)
	a.PinService = app.NewPinService(pinRepo, pinCache, publisher)

	a.PinWorker = worker.NewPinEventWorker(a.MQConn, a.PinService, cfg.RabbitMQ.PinEventQueue)
	if err := a.PinWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start pin event worker failed: %w", err)
	}

	ready = true
	return a, nil
}

// Migrate creates or updates the schema and returns.
func Migrate(ctx context.Context, cfg *config.Config) error {
	db, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	return repository.AutoMigrate(ctx, db)
}

// NewLogger installs a JSON slog logger as the process default.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

func (a *App) HealthChecks() map[string]handler.Check {
	return map[string]handler.Check{
		"mysql": func(ctx context.Context) error {
			sqlDB, err := a.MySQL.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		},
		"rabbitmq": func(context.Context) error {
			if a.MQConn == nil || a.MQConn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		},
	}
}

func (a *App) Close() error {
	var closeErr error
	if a.PinWorker != nil {
		a.PinWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			closeErr = errors.Join(closeErr, err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = errors.Join(closeErr, err)
		}
	}
	if a.MySQL != nil {
		if sqlDB, err := a.MySQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = errors.Join(closeErr, err)
			}
		}
	}
	return closeErr
}
