package worker

import (
	"context"
	"fmt"
	"sync"

	"payshare-notifier/internal/catalog"
	"payshare-notifier/internal/domain/event"
	"payshare-notifier/internal/landing"
	"payshare-notifier/internal/notify"
	"payshare-notifier/internal/sender/mail"
	"payshare-notifier/internal/sender/slack"
	"payshare-notifier/internal/sender/webpush"
	"payshare-notifier/pkg/logger"

	"go.uber.org/zap"
)

// The worker depends on interfaces so tests can swap every collaborator.

type RecipientResolver interface {
	ResolveChannelRecipients(ctx context.Context, workspaceID int64, eventType string, excludeUserID int64) (notify.ChannelRecipients, error)
}

type PushSender interface {
	SendToUser(ctx context.Context, userID int64, n webpush.Notification) (webpush.Report, error)
}

type SlackSender interface {
	SendToMany(ctx context.Context, targets []slack.Target, text string) slack.Report
}

type MailSender interface {
	SendInvitation(ctx context.Context, inv mail.Invitation) bool
}

// Worker routes one queue job at a time to its handler. It holds every
// collaborator explicitly; there is no ambient state.
type Worker struct {
	resolver RecipientResolver
	landing  *landing.Resolver
	push     PushSender
	slack    SlackSender
	mail     MailSender
	log      *logger.Logger

	fanOutNames map[string]bool
}

func New(resolver RecipientResolver, landingResolver *landing.Resolver, push PushSender, slackSender SlackSender, mailSender MailSender, log *logger.Logger) *Worker {
	return &Worker{
		resolver: resolver,
		landing:  landingResolver,
		push:     push,
		slack:    slackSender,
		mail:     mailSender,
		log:      log,
		fanOutNames: map[string]bool{
			event.NameLogCreated:          true,
			event.NameLogDeleted:          true,
			event.NameAdjustmentCreated:   true,
			event.NameAdjustmentCompleted: true,
			event.NameMemberJoined:        true,
			event.NameMemberLeft:          true,
			event.NameMemberRoleChanged:   true,
			event.NameWorkspaceDeleted:    true,
		},
	}
}

// Handle processes one job to completion. A nil return acks the job; an
// error fails it back to the queue, which owns retry and dead-lettering.
// Unknown event names are acked with a warning: a producer newer than this
// worker must not wedge the queue.
func (w *Worker) Handle(ctx context.Context, job event.Job) error {
	switch {
	case w.fanOutNames[job.Name]:
		return w.handleFanOut(ctx, job)
	case job.Name == event.NameInvitationCreated:
		return w.handleInvitation(ctx, job)
	default:
		w.log.WarnCtx(ctx, "skipping unknown event", zap.String("event", job.Name), zap.String("type", job.Data.Type))
		return nil
	}
}

// handleFanOut is the path for preference-gated events: resolve who to
// tell, render once, deliver to both channels concurrently. The job is not
// done until every send has settled.
func (w *Worker) handleFanOut(ctx context.Context, job event.Job) error {
	payload, err := event.DecodePayload(job.Name, job.Data.Payload)
	if err != nil {
		return err
	}

	workspaceID := event.WorkspaceOf(payload)
	if workspaceID == 0 {
		return fmt.Errorf("event %s has no workspace id", job.Name)
	}

	// The actor is always excluded: nobody is notified of their own action.
	// For member.joined the joining member is the actor and has no
	// preference row yet, which is exactly why the exclusion matters there.
	recipients, err := w.resolver.ResolveChannelRecipients(ctx, workspaceID, job.Name, job.Data.UserID)
	if err != nil {
		return err
	}

	msg := catalog.Build(job.Name, payload)
	land := w.landing.Resolve(job.Name, payload)
	pushNote := webpush.Notification{Title: msg.Title, Body: msg.Body, URL: land.URL}
	slackText := catalog.SlackText(job.Name, payload)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		sent     int
		failed   int
		slackRep slack.Report
	)

	for _, rec := range recipients.WebPush {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			report, err := w.push.SendToUser(ctx, userID, pushNote)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Contained: one recipient's subscription lookup failing is
				// not worth re-delivering the whole event for.
				failed++
				w.log.Warnf("push delivery failed for user %d: %v", userID, err)
				return
			}
			sent += report.SentCount()
			failed += report.FailCount()
		}(rec.UserID)
	}

	if len(recipients.Slack) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			targets := make([]slack.Target, 0, len(recipients.Slack))
			for _, rec := range recipients.Slack {
				targets = append(targets, slack.Target{WebhookURL: rec.SlackWebhookURL, UserID: rec.UserID})
			}
			rep := w.slack.SendToMany(ctx, targets, slackText)

			mu.Lock()
			slackRep = rep
			mu.Unlock()
		}()
	}

	wg.Wait()

	w.log.InfoCtx(ctx, "event fanned out",
		zap.String("event", job.Name),
		zap.Int64("workspace_id", workspaceID),
		zap.Int("push_recipients", len(recipients.WebPush)),
		zap.Int("push_sent", sent),
		zap.Int("push_failed", failed),
		zap.Int("slack_sent", slackRep.Sent),
		zap.Int("slack_failed", slackRep.Failed),
	)
	return nil
}

// handleInvitation bypasses preferences entirely: the invitee is not a
// member yet. Mail failure is soft by contract, so this handler never
// fails the job.
func (w *Worker) handleInvitation(ctx context.Context, job event.Job) error {
	payload, err := event.DecodePayload(job.Name, job.Data.Payload)
	if err != nil {
		return err
	}
	p, ok := payload.(event.InvitationPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s", job.Name)
	}
	if p.InviteeEmail == "" {
		return fmt.Errorf("invitation event has no invitee email")
	}

	delivered := w.mail.SendInvitation(ctx, mail.Invitation{
		InviteeEmail:    p.InviteeEmail,
		WorkspaceName:   p.WorkspaceName,
		InviterNickname: p.InviterNickname,
		InviterEmail:    p.InviterEmail,
	})

	w.log.InfoCtx(ctx, "invitation email handled",
		zap.String("invitee", p.InviteeEmail),
		zap.Bool("delivered", delivered),
	)
	return nil
}
