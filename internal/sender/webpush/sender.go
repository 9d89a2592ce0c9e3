package webpush

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"payshare-notifier/internal/domain/notification"
	"payshare-notifier/internal/repository"
	"payshare-notifier/pkg/logger"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
)

// Notification is the JSON payload delivered to the browser.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

// Report is the two-phase outcome of one fan-out: who got the payload,
// which subscriptions the push service declared gone (404/410), and which
// failed transiently and are kept for next time.
type Report struct {
	Delivered         []int64
	DeadEndpoints     []int64
	TransientFailures []int64
}

func (r Report) SentCount() int { return len(r.Delivered) }
func (r Report) FailCount() int { return len(r.TransientFailures) }

// Transport performs one protocol-level push delivery and reports the
// HTTP status. Extracted so tests can stand in for the push service.
type Transport interface {
	Send(ctx context.Context, sub notification.PushSubscription, payload []byte) (int, error)
}

type vapidTransport struct {
	options webpush.Options
}

// NewVAPIDTransport builds the production transport: VAPID-signed delivery
// with payload encryption per the Web Push protocol, bounded by timeout.
func NewVAPIDTransport(publicKey, privateKey, subscriber string, timeout time.Duration) Transport {
	return &vapidTransport{
		options: webpush.Options{
			Subscriber:      subscriber,
			VAPIDPublicKey:  publicKey,
			VAPIDPrivateKey: privateKey,
			TTL:             60,
			HTTPClient:      &http.Client{Timeout: timeout},
		},
	}
}

func (t *vapidTransport) Send(ctx context.Context, sub notification.PushSubscription, payload []byte) (int, error) {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &t.options)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

type Sender struct {
	subs      repository.PushSubscriptionRepository
	transport Transport
	log       *logger.Logger
}

func NewSender(subs repository.PushSubscriptionRepository, transport Transport, log *logger.Logger) *Sender {
	return &Sender{subs: subs, transport: transport, log: log}
}

// SendToUser fans the payload out to every device the user registered,
// concurrently, then prunes subscriptions the push service reported gone.
// A user with no subscriptions yields an empty report, not an error.
func (s *Sender) SendToUser(ctx context.Context, userID int64, n Notification) (Report, error) {
	subs, err := s.subs.ListByUser(ctx, userID)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load push subscriptions for user %d: %w", userID, err)
	}
	if len(subs) == 0 {
		return Report{}, nil
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return Report{}, fmt.Errorf("failed to marshal push payload: %w", err)
	}

	var (
		mu     sync.Mutex
		report Report
		wg     sync.WaitGroup
	)

	for _, sub := range subs {
		wg.Add(1)
		go func(sub notification.PushSubscription) {
			defer wg.Done()
			status, err := s.transport.Send(ctx, sub, payload)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.TransientFailures = append(report.TransientFailures, sub.ID)
				s.log.Warnf("push send failed for subscription %d: %v", sub.ID, err)
			case status == http.StatusNotFound || status == http.StatusGone:
				report.DeadEndpoints = append(report.DeadEndpoints, sub.ID)
			case status >= 200 && status < 300:
				report.Delivered = append(report.Delivered, sub.ID)
			default:
				report.TransientFailures = append(report.TransientFailures, sub.ID)
				s.log.Warnf("push send for subscription %d returned status %d", sub.ID, status)
			}
		}(sub)
	}
	wg.Wait()

	s.prune(ctx, report.DeadEndpoints)
	return report, nil
}

// prune removes subscriptions whose endpoints are permanently gone, in one
// batch. A failed prune is logged and retried naturally on the next send.
func (s *Sender) prune(ctx context.Context, ids []int64) {
	if len(ids) == 0 {
		return
	}
	if err := s.subs.DeleteByIDs(ctx, ids); err != nil {
		s.log.ErrorCtx(ctx, "failed to prune dead push subscriptions",
			zap.Int64s("subscription_ids", ids), zap.Error(err))
		return
	}
	s.log.InfoCtx(ctx, "pruned dead push subscriptions", zap.Int64s("subscription_ids", ids))
}
