package notify

import (
	"context"
	"fmt"
	"sync"

	"payshare-notifier/internal/domain/notification"
	"payshare-notifier/internal/repository"
)

// ChannelRecipients holds the two per-channel recipient lists for one
// event. A user enabled for both channels appears in both lists; dedup
// within a channel is the sender's concern.
type ChannelRecipients struct {
	WebPush []notification.Recipient
	Slack   []notification.Recipient
}

type Resolver struct {
	prefs repository.PreferenceRepository
}

func NewResolver(prefs repository.PreferenceRepository) *Resolver {
	return &Resolver{prefs: prefs}
}

// ResolveChannelRecipients issues the push-gated and slack-gated reads
// concurrently and joins them. If either read fails the whole resolution
// fails: a partial recipient list must never be used, since under-notifying
// is indistinguishable from a bug. excludeUserID 0 means nobody is excluded.
func (r *Resolver) ResolveChannelRecipients(ctx context.Context, workspaceID int64, eventType string, excludeUserID int64) (ChannelRecipients, error) {
	var (
		wg       sync.WaitGroup
		push     []notification.Recipient
		slack    []notification.Recipient
		pushErr  error
		slackErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		push, pushErr = r.prefs.ListPushRecipients(ctx, workspaceID, eventType, excludeUserID)
	}()
	go func() {
		defer wg.Done()
		slack, slackErr = r.prefs.ListSlackRecipients(ctx, workspaceID, eventType, excludeUserID)
	}()
	wg.Wait()

	if pushErr != nil {
		return ChannelRecipients{}, fmt.Errorf("failed to resolve push recipients: %w", pushErr)
	}
	if slackErr != nil {
		return ChannelRecipients{}, fmt.Errorf("failed to resolve slack recipients: %w", slackErr)
	}

	return ChannelRecipients{WebPush: push, Slack: slack}, nil
}
