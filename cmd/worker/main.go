package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"payshare-notifier/config"
	"payshare-notifier/internal/landing"
	"payshare-notifier/internal/notify"
	"payshare-notifier/internal/queue"
	"payshare-notifier/internal/repository"
	"payshare-notifier/internal/sender/mail"
	"payshare-notifier/internal/sender/slack"
	"payshare-notifier/internal/sender/webpush"
	"payshare-notifier/internal/worker"
	"payshare-notifier/pkg/database"
	"payshare-notifier/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == "release" {
		mode = logger.ProductionMode
	}
	l := logger.New(mode)
	defer l.Logger.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	sendTimeout := time.Duration(cfg.SendTimeoutSec) * time.Second

	prefRepo := repository.NewPreferenceRepository(db)
	subRepo := repository.NewPushSubscriptionRepository(db)

	resolver := notify.NewResolver(prefRepo)
	landingResolver := landing.NewResolver(cfg.BaseURL)

	pushTransport := webpush.NewVAPIDTransport(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject, sendTimeout)
	pushSender := webpush.NewSender(subRepo, pushTransport, l)
	slackSender := slack.NewSender(sendTimeout, l)
	mailSender := mail.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom, cfg.BaseURL, sendTimeout, l)

	w := worker.New(resolver, landingResolver, pushSender, slackSender, mailSender, l)

	consumer, err := queue.NewConsumer(&queue.ConsumerConfig{
		URL:             cfg.RabbitMQURL,
		QueueName:       cfg.EventQueue,
		DeadLetterQueue: cfg.DeadLetterQueue,
		Concurrency:     cfg.WorkerConcurrency,
		MaxRetries:      cfg.MaxEventRetries,
	}, w, l)
	if err != nil {
		log.Fatalf("Failed to create queue consumer: %v", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l.Infof("event worker started, queue=%s concurrency=%d", cfg.EventQueue, cfg.WorkerConcurrency)
	if err := consumer.StartConsuming(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Consumer stopped: %v", err)
	}
	l.Infof("event worker stopped")
}
