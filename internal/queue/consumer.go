package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"payshare-notifier/internal/domain/event"
	"payshare-notifier/pkg/logger"

	"github.com/streadway/amqp"
)

// Handler processes one parsed job. A nil return acks the delivery.
type Handler interface {
	Handle(ctx context.Context, job event.Job) error
}

type Consumer struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	handler     Handler
	log         *logger.Logger
	queueName   string
	dlqName     string
	concurrency int
	maxRetries  int
}

type ConsumerConfig struct {
	URL             string
	QueueName       string
	DeadLetterQueue string
	Concurrency     int
	MaxRetries      int
}

func NewConsumer(cfg *ConsumerConfig, handler Handler, log *logger.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// Prefetch matches the pool size so the broker never hands us more
	// jobs than we can run at once.
	if err := ch.Qos(cfg.Concurrency, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	// Declare dead letter queue first, then the main queue routing
	// exhausted jobs to it.
	if _, err := ch.QueueDeclare(cfg.DeadLetterQueue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare DLQ: %w", err)
	}

	_, err = ch.QueueDeclare(cfg.QueueName, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": cfg.DeadLetterQueue,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &Consumer{
		conn:        conn,
		channel:     ch,
		handler:     handler,
		log:         log,
		queueName:   cfg.QueueName,
		dlqName:     cfg.DeadLetterQueue,
		concurrency: cfg.Concurrency,
		maxRetries:  cfg.MaxRetries,
	}, nil
}

// StartConsuming drains the queue with a fixed pool of workers until the
// context is cancelled or the delivery channel closes.
func (c *Consumer) StartConsuming(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		c.queueName,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < c.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-msgs:
					if !ok {
						return
					}
					c.handleDelivery(ctx, msg)
				}
			}
		}()
	}
	wg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

func (c *Consumer) handleDelivery(ctx context.Context, msg amqp.Delivery) {
	job, err := event.ParseJob(msg.Body)
	if err == nil {
		err = c.handler.Handle(ctx, job)
	}
	if err == nil {
		_ = msg.Ack(false)
		return
	}

	c.log.Errorf("error processing job %s: %v", job.Name, err)

	retryCount := 0
	if val, ok := msg.Headers["x-retry-count"].(int32); ok {
		retryCount = int(val)
	}

	if retryCount >= c.maxRetries {
		// Exhausted: reject without requeue so the broker dead-letters it.
		_ = msg.Nack(false, false)
		c.log.Warnf("job sent to DLQ after %d retries", retryCount)
		return
	}

	if reqErr := c.requeue(msg, retryCount+1); reqErr != nil {
		c.log.Errorf("failed to requeue job: %v", reqErr)
		_ = msg.Nack(false, true)
		return
	}
	_ = msg.Ack(false)
}

// requeue republishes the delivery with a bumped retry counter and a
// squared-backoff expiration.
func (c *Consumer) requeue(msg amqp.Delivery, retryCount int) error {
	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retry-count"] = int32(retryCount)

	delay := time.Duration(retryCount*retryCount) * time.Second

	return c.channel.Publish(
		"",          // exchange
		c.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        msg.Body,
			Headers:     headers,
			Expiration:  fmt.Sprintf("%d", delay.Milliseconds()),
		},
	)
}

func (c *Consumer) Close() error {
	if err := c.channel.Close(); err != nil {
		return err
	}
	return c.conn.Close()
}
