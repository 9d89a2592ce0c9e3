package mail

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"payshare-notifier/pkg/logger"

	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	err  error
	sent []*gomail.Message
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func newTestSender(d dialSender) *Sender {
	return &Sender{
		dialer:  d,
		from:    "noreply@payshare.app",
		baseURL: "https://payshare.app",
		timeout: 2 * time.Second,
		log:     logger.NewNop(),
	}
}

func TestSendInvitationUnconfiguredReturnsFalse(t *testing.T) {
	s := NewSender("", 587, "", "", "", "https://payshare.app", time.Second, logger.NewNop())

	ok := s.SendInvitation(context.Background(), Invitation{InviteeEmail: "a@b.c"})
	if ok {
		t.Fatal("unconfigured transport must return false")
	}
}

func TestSendInvitationSuccess(t *testing.T) {
	d := &fakeDialer{}
	s := newTestSender(d)

	ok := s.SendInvitation(context.Background(), Invitation{
		InviteeEmail:    "invitee@example.com",
		WorkspaceName:   "우리집",
		InviterNickname: "철수",
		InviterEmail:    "chulsoo@example.com",
	})
	if !ok {
		t.Fatal("expected true on accepted send")
	}
	if len(d.sent) != 1 {
		t.Fatalf("want exactly 1 email, got %d", len(d.sent))
	}
}

func TestSendInvitationTransportErrorReturnsFalse(t *testing.T) {
	d := &fakeDialer{err: errors.New("connection refused")}
	s := newTestSender(d)

	ok := s.SendInvitation(context.Background(), Invitation{InviteeEmail: "a@b.c"})
	if ok {
		t.Fatal("transport error must convert to false, not propagate")
	}
}

func TestInvitationTemplateEscapesAndSubstitutes(t *testing.T) {
	s := newTestSender(&fakeDialer{})

	html, err := s.render(Invitation{
		InviteeEmail:    "invitee@example.com",
		WorkspaceName:   "<script>우리집</script>",
		InviterNickname: "철수",
		InviterEmail:    "chulsoo@example.com",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatal("workspace name was not HTML-escaped")
	}
	if !strings.Contains(html, "철수") || !strings.Contains(html, "chulsoo@example.com") {
		t.Fatal("inviter fields missing from rendered email")
	}
	if !strings.Contains(html, `href="https://payshare.app"`) {
		t.Fatal("call-to-action link missing")
	}
}
