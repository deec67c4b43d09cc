package main

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/amqp"
	"github.com/Domenick1991/flightbooking/internal/email"
	"github.com/Domenick1991/flightbooking/internal/events"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"
)

// consumer is implemented by both the Kafka and the RabbitMQ consumer.
type consumer interface {
	Consume(ctx context.Context, handler func(context.Context, []byte) error) error
	Close() error
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
	log := logger.New("worker", cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var c consumer
	switch cfg.Events.Backend {
	case config.EventsBackendKafka:
		c = kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingTopic)
	case config.EventsBackendAMQP:
		ac, err := amqp.NewConsumer(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			log.Error("connect rabbitmq", "error", err)
			os.Exit(1)
		}
		c = ac
	default:
		log.Error("events.backend must be kafka or amqp for the worker")
		os.Exit(1)
	}
	defer c.Close()

	sender := email.NewSender(log.Named("email"))
	log.Info("worker started", "backend", cfg.Events.Backend)

	if err := c.Consume(ctx, handleEvent(sender, log)); err != nil {
		log.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
	log.Info("worker stopped")
}

// handleEvent skips messages it cannot decode so one bad payload does not
// stall the queue.
func handleEvent(sender *email.Sender, log hclog.Logger) func(context.Context, []byte) error {
	return func(ctx context.Context, body []byte) error {
		var event events.BookingEvent
		if err := json.Unmarshal(body, &event); err != nil {
			log.Warn("decode event", "error", err)
			return nil
		}
		if event.Type != events.TypeSeatBooked {
			log.Debug("ignoring event", "type", event.Type)
			return nil
		}
		return sender.Send(ctx, event)
	}
}
