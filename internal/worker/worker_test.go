package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"payshare-notifier/internal/domain/event"
	"payshare-notifier/internal/domain/notification"
	"payshare-notifier/internal/landing"
	"payshare-notifier/internal/notify"
	"payshare-notifier/internal/sender/mail"
	"payshare-notifier/internal/sender/slack"
	"payshare-notifier/internal/sender/webpush"
	"payshare-notifier/pkg/logger"
)

type fakeResolver struct {
	recipients notify.ChannelRecipients
	err        error

	gotWorkspace int64
	gotEvent     string
	gotExclude   int64
	calls        int
}

func (f *fakeResolver) ResolveChannelRecipients(ctx context.Context, workspaceID int64, eventType string, excludeUserID int64) (notify.ChannelRecipients, error) {
	f.calls++
	f.gotWorkspace = workspaceID
	f.gotEvent = eventType
	f.gotExclude = excludeUserID
	if f.err != nil {
		return notify.ChannelRecipients{}, f.err
	}
	return f.recipients, nil
}

type fakePushSender struct {
	mu    sync.Mutex
	calls []int64
	notes []webpush.Notification
}

func (f *fakePushSender) SendToUser(ctx context.Context, userID int64, n webpush.Notification) (webpush.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, userID)
	f.notes = append(f.notes, n)
	return webpush.Report{Delivered: []int64{1}}, nil
}

type fakeSlackSender struct {
	mu      sync.Mutex
	calls   int
	targets []slack.Target
	text    string
}

func (f *fakeSlackSender) SendToMany(ctx context.Context, targets []slack.Target, text string) slack.Report {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.targets = targets
	f.text = text
	return slack.Report{Sent: len(targets)}
}

type fakeMailSender struct {
	calls []mail.Invitation
	ok    bool
}

func (f *fakeMailSender) SendInvitation(ctx context.Context, inv mail.Invitation) bool {
	f.calls = append(f.calls, inv)
	return f.ok
}

func newTestWorker(resolver *fakeResolver, push *fakePushSender, slackS *fakeSlackSender, mailS *fakeMailSender) *Worker {
	return New(resolver, landing.NewResolver("https://payshare.app"), push, slackS, mailS, logger.NewNop())
}

func logCreatedJob(t *testing.T) event.Job {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"workspace_id":   7,
		"workspace_name": "우리집",
		"log_id":         12,
		"title":          "장보기",
		"amount":         15000,
		"actor_nickname": "철수",
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return event.Job{
		Name: event.NameLogCreated,
		Data: event.JobData{
			Type:          "notification",
			AggregateType: event.AggregateTypeLog,
			Payload:       payload,
			UserID:        1,
		},
	}
}

func TestHandleLogCreatedFansOutPerChannel(t *testing.T) {
	resolver := &fakeResolver{recipients: notify.ChannelRecipients{
		WebPush: []notification.Recipient{{UserID: 2, WebPushEnabled: true}},
		Slack:   []notification.Recipient{{UserID: 3, SlackEnabled: true, SlackWebhookURL: "https://hooks.slack.com/b"}},
	}}
	push := &fakePushSender{}
	slackS := &fakeSlackSender{}
	mailS := &fakeMailSender{}
	w := newTestWorker(resolver, push, slackS, mailS)

	if err := w.Handle(context.Background(), logCreatedJob(t)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if resolver.gotWorkspace != 7 || resolver.gotEvent != event.NameLogCreated || resolver.gotExclude != 1 {
		t.Fatalf("resolver called with wrong args: %+v", resolver)
	}
	if len(push.calls) != 1 || push.calls[0] != 2 {
		t.Fatalf("push sender calls: want [2], got %v", push.calls)
	}
	if slackS.calls != 1 || len(slackS.targets) != 1 || slackS.targets[0].WebhookURL != "https://hooks.slack.com/b" {
		t.Fatalf("slack sender not invoked for member B: %+v", slackS)
	}
	if len(mailS.calls) != 0 {
		t.Fatal("fan-out event must not touch the mail sender")
	}

	note := push.notes[0]
	if note.Title == "" || note.Body == "" {
		t.Fatalf("push notification not rendered: %+v", note)
	}
	if note.URL != "https://payshare.app/workspace/7" {
		t.Fatalf("push landing url: got %q", note.URL)
	}
	if slackS.text == "" {
		t.Fatal("slack text not rendered")
	}
}

func TestHandleUnknownEventIsNoOp(t *testing.T) {
	resolver := &fakeResolver{}
	push := &fakePushSender{}
	slackS := &fakeSlackSender{}
	mailS := &fakeMailSender{}
	w := newTestWorker(resolver, push, slackS, mailS)

	err := w.Handle(context.Background(), event.Job{Name: "category.created"})
	if err != nil {
		t.Fatalf("unknown event must complete successfully, got %v", err)
	}
	if resolver.calls != 0 || len(push.calls) != 0 || slackS.calls != 0 || len(mailS.calls) != 0 {
		t.Fatal("unknown event must not reach any collaborator")
	}
}

func TestHandleResolutionFailureFailsJob(t *testing.T) {
	boom := errors.New("preference store down")
	resolver := &fakeResolver{err: boom}
	push := &fakePushSender{}
	slackS := &fakeSlackSender{}
	w := newTestWorker(resolver, push, slackS, &fakeMailSender{})

	err := w.Handle(context.Background(), logCreatedJob(t))
	if !errors.Is(err, boom) {
		t.Fatalf("expected resolution error to propagate, got %v", err)
	}
	if len(push.calls) != 0 || slackS.calls != 0 {
		t.Fatal("no send may be attempted on failed resolution")
	}
}

func TestHandleMalformedPayloadFailsJob(t *testing.T) {
	w := newTestWorker(&fakeResolver{}, &fakePushSender{}, &fakeSlackSender{}, &fakeMailSender{})

	err := w.Handle(context.Background(), event.Job{
		Name: event.NameLogCreated,
		Data: event.JobData{Payload: json.RawMessage(`{"workspace_id": "seven"`)},
	})
	if err == nil {
		t.Fatal("malformed payload must fail the job")
	}
}

func TestHandleInvitationSendsOneEmail(t *testing.T) {
	resolver := &fakeResolver{}
	mailS := &fakeMailSender{ok: true}
	w := newTestWorker(resolver, &fakePushSender{}, &fakeSlackSender{}, mailS)

	payload, _ := json.Marshal(map[string]any{
		"workspace_id":     7,
		"workspace_name":   "우리집",
		"invitee_email":    "invitee@example.com",
		"inviter_nickname": "철수",
		"inviter_email":    "chulsoo@example.com",
	})
	job := event.Job{
		Name: event.NameInvitationCreated,
		Data: event.JobData{Payload: payload, UserID: 1},
	}

	if err := w.Handle(context.Background(), job); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if resolver.calls != 0 {
		t.Fatal("invitation must bypass the recipient resolver")
	}
	if len(mailS.calls) != 1 {
		t.Fatalf("want exactly 1 email, got %d", len(mailS.calls))
	}
	inv := mailS.calls[0]
	if inv.InviteeEmail != "invitee@example.com" || inv.WorkspaceName != "우리집" || inv.InviterNickname != "철수" {
		t.Fatalf("invitation fields not forwarded: %+v", inv)
	}
}

func TestHandleInvitationMailFailureDoesNotFailJob(t *testing.T) {
	mailS := &fakeMailSender{ok: false}
	w := newTestWorker(&fakeResolver{}, &fakePushSender{}, &fakeSlackSender{}, mailS)

	payload, _ := json.Marshal(map[string]any{"invitee_email": "a@b.c"})
	job := event.Job{Name: event.NameInvitationCreated, Data: event.JobData{Payload: payload}}

	if err := w.Handle(context.Background(), job); err != nil {
		t.Fatalf("mail soft failure must not fail the job: %v", err)
	}
}

// Redelivery of the same job produces independent sends: this pipeline does
// not deduplicate across at-least-once redeliveries.
func TestHandleRedeliverySendsAgain(t *testing.T) {
	resolver := &fakeResolver{recipients: notify.ChannelRecipients{
		WebPush: []notification.Recipient{{UserID: 2}},
	}}
	push := &fakePushSender{}
	w := newTestWorker(resolver, push, &fakeSlackSender{}, &fakeMailSender{})

	job := logCreatedJob(t)
	job.Name = event.NameLogDeleted

	for i := 0; i < 2; i++ {
		if err := w.Handle(context.Background(), job); err != nil {
			t.Fatalf("handle #%d: %v", i+1, err)
		}
	}
	if len(push.calls) != 2 {
		t.Fatalf("redelivery must send twice, got %d sends", len(push.calls))
	}
}
