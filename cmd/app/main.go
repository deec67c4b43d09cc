package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/Domenick1991/flightbooking/api"
	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/amqp"
	"github.com/Domenick1991/flightbooking/internal/auth"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/cache"
	"github.com/Domenick1991/flightbooking/internal/dispatch"
	"github.com/Domenick1991/flightbooking/internal/handlers"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/Domenick1991/flightbooking/internal/service/users"
	"github.com/Domenick1991/flightbooking/internal/tcpserver"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

type stores struct {
	flights  repository.FlightRepository
	seats    repository.SeatRepository
	bookings repository.BookingRepository
	users    repository.UserRepository
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		hclog.Default().Warn("load .env", "error", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		hclog.Default().Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.New("flights", cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log hclog.Logger) error {
	checks := map[string]api.Check{}

	var st stores
	if cfg.Database.InMemory {
		mem := repository.NewMemoryStore()
		mem.SeedDemo()
		st = stores{mem.FlightRepository(), mem.SeatRepository(), mem.BookingRepository(), mem.UserRepository()}
		log.Warn("using in-memory store, data is lost on exit")
	} else {
		pool, err := openPool(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		defer pool.Close()
		checks["postgres"] = pool.Ping
		st = stores{
			repository.NewFlightRepository(pool),
			repository.NewSeatRepository(pool),
			repository.NewBookingRepository(pool),
			repository.NewUserRepository(pool),
		}
	}

	var flightCache flights.FlightCache
	var coordOpts []booking.CoordinatorOption
	if cfg.Redis.Enabled() {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.FlightsCacheTTLDuration())
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn("redis not reachable, continuing", "error", err)
		}
		checks["redis"] = redisCache.Ping
		flightCache = redisCache
		if cfg.Redis.SeatLocks {
			coordOpts = append(coordOpts, booking.WithSeatLocker(redisCache, cfg.Booking.SeatLockTTLDuration()))
		}
	}

	switch cfg.Events.Backend {
	case config.EventsBackendKafka:
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log.Named("kafka"))
		defer producer.Close()
		checks["kafka"] = producer.CheckConnection
		coordOpts = append(coordOpts, booking.WithProducer(producer, cfg.Kafka.BookingTopic))
	case config.EventsBackendAMQP:
		publisher, err := amqp.NewPublisher(cfg.AMQP.URL, log.Named("amqp"))
		if err != nil {
			return err
		}
		defer publisher.Close()
		coordOpts = append(coordOpts, booking.WithProducer(publisher, cfg.AMQP.Queue))
	}

	userSvc := users.NewUserService(st.users, auth.NewBcryptHasher(cfg.Auth.BcryptCost))
	flightSvc := flights.NewFlightService(st.flights, st.seats, flightCache, log.Named("flights"))
	coordinator := booking.NewCoordinator(st.flights, st.seats, st.bookings, log.Named("booking"), coordOpts...)

	d := dispatch.New(log.Named("dispatch"))
	handlers.New(userSvc, flightSvc, coordinator, cfg.Auth, log.Named("handlers")).Register(d)
	commands := d.Commands()
	sort.Strings(commands)
	log.Info("commands registered", "commands", commands)

	if !log.IsDebug() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(flightSvc, checks, log.Named("http"))
	tcp := tcpserver.New(cfg.Server, d, log.Named("tcp"))

	return bootstrap.Run(ctx, cfg, tcp, router, log)
}

func openPool(ctx context.Context, cfg config.DatabaseConfig, log hclog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if cfg.Migrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("database migrated")
	}
	return pool, nil
}
