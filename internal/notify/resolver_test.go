package notify

import (
	"context"
	"errors"
	"testing"

	"payshare-notifier/internal/domain/event"
	"payshare-notifier/internal/domain/notification"
)

type fakePreferenceRepo struct {
	push     []notification.Recipient
	slack    []notification.Recipient
	pushErr  error
	slackErr error

	gotWorkspace int64
	gotEvent     string
	gotExclude   int64
}

func (f *fakePreferenceRepo) ListPushRecipients(ctx context.Context, workspaceID int64, eventType string, excludeUserID int64) ([]notification.Recipient, error) {
	f.gotWorkspace = workspaceID
	f.gotEvent = eventType
	f.gotExclude = excludeUserID
	if f.pushErr != nil {
		return nil, f.pushErr
	}
	return filterExcluded(f.push, excludeUserID), nil
}

func (f *fakePreferenceRepo) ListSlackRecipients(ctx context.Context, workspaceID int64, eventType string, excludeUserID int64) ([]notification.Recipient, error) {
	if f.slackErr != nil {
		return nil, f.slackErr
	}
	return filterExcluded(f.slack, excludeUserID), nil
}

func (f *fakePreferenceRepo) GetPreference(ctx context.Context, workspaceID, userID int64) (notification.Preference, error) {
	return notification.Preference{}, nil
}

func filterExcluded(in []notification.Recipient, excludeUserID int64) []notification.Recipient {
	var out []notification.Recipient
	for _, r := range in {
		if excludeUserID != 0 && r.UserID == excludeUserID {
			continue
		}
		out = append(out, r)
	}
	return out
}

func TestResolveExcludesActor(t *testing.T) {
	repo := &fakePreferenceRepo{
		push: []notification.Recipient{
			{UserID: 1, WebPushEnabled: true},
			{UserID: 2, WebPushEnabled: true},
		},
		slack: []notification.Recipient{
			{UserID: 1, SlackEnabled: true, SlackWebhookURL: "https://hooks.slack.com/a"},
		},
	}
	r := NewResolver(repo)

	got, err := r.ResolveChannelRecipients(context.Background(), 7, event.NameLogCreated, 1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for _, rec := range got.WebPush {
		if rec.UserID == 1 {
			t.Fatal("excluded user appeared in push list")
		}
	}
	for _, rec := range got.Slack {
		if rec.UserID == 1 {
			t.Fatal("excluded user appeared in slack list")
		}
	}
	if repo.gotWorkspace != 7 || repo.gotEvent != event.NameLogCreated || repo.gotExclude != 1 {
		t.Fatalf("query args not forwarded: %+v", repo)
	}
}

func TestResolveListsAreIndependent(t *testing.T) {
	repo := &fakePreferenceRepo{
		push: []notification.Recipient{
			{UserID: 2, WebPushEnabled: true},
			{UserID: 3, WebPushEnabled: true, SlackEnabled: true},
		},
		slack: []notification.Recipient{
			{UserID: 3, WebPushEnabled: true, SlackEnabled: true},
			{UserID: 4, SlackEnabled: true},
		},
	}
	r := NewResolver(repo)

	got, err := r.ResolveChannelRecipients(context.Background(), 7, event.NameLogCreated, 0)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if len(got.WebPush) != 2 || len(got.Slack) != 2 {
		t.Fatalf("unexpected list sizes: push=%d slack=%d", len(got.WebPush), len(got.Slack))
	}
	if !containsUser(got.WebPush, 2) || containsUser(got.Slack, 2) {
		t.Fatal("push-only user must appear only in the push list")
	}
	if !containsUser(got.WebPush, 3) || !containsUser(got.Slack, 3) {
		t.Fatal("dual-channel user must appear in both lists")
	}
	if containsUser(got.WebPush, 4) || !containsUser(got.Slack, 4) {
		t.Fatal("slack-only user must appear only in the slack list")
	}
}

func TestResolveFailsWholeOnEitherError(t *testing.T) {
	boom := errors.New("db down")

	for _, tc := range []struct {
		name string
		repo *fakePreferenceRepo
	}{
		{"push read fails", &fakePreferenceRepo{pushErr: boom, slack: []notification.Recipient{{UserID: 2}}}},
		{"slack read fails", &fakePreferenceRepo{slackErr: boom, push: []notification.Recipient{{UserID: 2}}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := NewResolver(tc.repo)
			got, err := r.ResolveChannelRecipients(context.Background(), 7, event.NameLogCreated, 0)
			if !errors.Is(err, boom) {
				t.Fatalf("expected wrapped read error, got %v", err)
			}
			if got.WebPush != nil || got.Slack != nil {
				t.Fatal("partial recipient lists must never be returned")
			}
		})
	}
}

func containsUser(recipients []notification.Recipient, userID int64) bool {
	for _, r := range recipients {
		if r.UserID == userID {
			return true
		}
	}
	return false
}
