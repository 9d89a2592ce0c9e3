package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"payshare-notifier/pkg/logger"
)

// Target is one incoming-webhook destination.
type Target struct {
	WebhookURL string
	UserID     int64
}

// Report is the soft-failure outcome of one fan-out. Slack is a courtesy
// channel: failures are counted and logged, never returned as errors, so a
// bad webhook can't fail the parent job into a retry storm.
type Report struct {
	Sent   int
	Failed int
}

type Sender struct {
	client *http.Client
	log    *logger.Logger
}

func NewSender(timeout time.Duration, log *logger.Logger) *Sender {
	return &Sender{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

type webhookBody struct {
	Text string `json:"text"`
}

// SendToMany posts the text to each distinct webhook URL concurrently.
// One failing target never aborts the others.
func (s *Sender) SendToMany(ctx context.Context, targets []Target, text string) Report {
	seen := make(map[string]bool, len(targets))
	distinct := targets[:0:0]
	for _, t := range targets {
		if t.WebhookURL == "" || seen[t.WebhookURL] {
			continue
		}
		seen[t.WebhookURL] = true
		distinct = append(distinct, t)
	}
	if len(distinct) == 0 {
		return Report{}
	}

	body, err := json.Marshal(webhookBody{Text: text})
	if err != nil {
		s.log.Errorf("failed to marshal slack payload: %v", err)
		return Report{Failed: len(distinct)}
	}

	var (
		mu     sync.Mutex
		report Report
		wg     sync.WaitGroup
	)

	for _, target := range distinct {
		wg.Add(1)
		go func(target Target) {
			defer wg.Done()
			err := s.post(ctx, target.WebhookURL, body)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				s.log.Warnf("slack send failed for user %d: %v", target.UserID, err)
				return
			}
			report.Sent++
		}(target)
	}
	wg.Wait()

	return report
}

func (s *Sender) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
