package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-jwt-identity/config"
	"github.com/oksasatya/go-jwt-identity/internal/worker"
	"github.com/oksasatya/go-jwt-identity/pkg/helpers"
	"github.com/oksasatya/go-jwt-identity/pkg/mailer"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-event-worker", cfg.Env)
	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; event worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEventsQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	mg, err := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.MailgunAPIBase)
	if err != nil {
		log.Fatalf("mailgun: %v", err)
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue, 16)
	if err != nil {
		log.Fatalf("amqp: %v", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	msgs, err := consumer.Deliveries(ctx, cfg.AppName+"-event-worker")
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	handler := &worker.EventHandler{
		Mail:      mg,
		AppName:   cfg.AppName,
		SupportTo: cfg.MailSupportTo,
		Logger:    logger,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			c, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			err := handler.Handle(c, msg.Body)
			cancel()

			fields := logrus.Fields{"message_id": msg.MessageId, "type": msg.Type}
			switch {
			case err == nil:
				_ = msg.Ack(false)
			case errors.Is(err, worker.ErrBadMessage):
				helpers.LogError(logger, "dropping message", err, fields)
				_ = msg.Nack(false, false)
			default:
				helpers.LogError(logger, "handle failed; requeueing", err, fields)
				_ = msg.Nack(false, true)
			}
		}
	}()

	logger.WithField("queue", consumer.Queue).Info("event worker listening")
	<-ctx.Done()
	logger.Info("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
