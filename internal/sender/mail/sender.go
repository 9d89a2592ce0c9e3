package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"payshare-notifier/pkg/logger"

	"gopkg.in/gomail.v2"
)

// Invitation carries the fields rendered into the invitation email.
type Invitation struct {
	InviteeEmail    string
	WorkspaceName   string
	InviterNickname string
	InviterEmail    string
}

// dialSender is the slice of *gomail.Dialer the sender needs, extracted so
// tests can stand in for the SMTP transport.
type dialSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Sender struct {
	dialer  dialSender
	from    string
	baseURL string
	timeout time.Duration
	log     *logger.Logger
}

// NewSender builds the SMTP sender. When the transport was never configured
// (missing host, user or password) the sender is a documented no-op: every
// SendInvitation logs a warning and returns false. Email is optional
// infrastructure in some deployments and must not panic the worker.
func NewSender(host string, port int, user, password, from, baseURL string, timeout time.Duration, log *logger.Logger) *Sender {
	s := &Sender{
		from:    from,
		baseURL: baseURL,
		timeout: timeout,
		log:     log,
	}
	if host == "" || user == "" || password == "" {
		log.Warnf("SMTP transport not configured, invitation emails disabled")
		return s
	}
	if from == "" {
		s.from = user
	}
	s.dialer = gomail.NewDialer(host, port, user, password)
	return s
}

var invitationTemplate = template.Must(template.New("invitation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #222;">
  <h2>{{.WorkspaceName}} 워크스페이스에 초대되었습니다</h2>
  <p>{{.InviterNickname}}({{.InviterEmail}})님이 회원님을 <strong>{{.WorkspaceName}}</strong> 워크스페이스에 초대했습니다.</p>
  <p>아래 버튼을 눌러 초대를 수락해 주세요.</p>
  <p><a href="{{.BaseURL}}" style="display:inline-block;padding:10px 20px;background:#4f46e5;color:#fff;text-decoration:none;border-radius:6px;">PayShare 시작하기</a></p>
</body>
</html>`))

// SendInvitation renders and sends the invitation email. It returns true
// only on confirmed SMTP acceptance. Transport errors are logged with the
// target address and converted to false: the invitation row was committed
// by the CRUD layer before this event fired, so a mail failure must never
// fail the enclosing job.
func (s *Sender) SendInvitation(ctx context.Context, inv Invitation) bool {
	if s.dialer == nil {
		s.log.Warnf("dropping invitation email to %s: SMTP transport not configured", inv.InviteeEmail)
		return false
	}

	html, err := s.render(inv)
	if err != nil {
		s.log.Errorf("failed to render invitation email for %s: %v", inv.InviteeEmail, err)
		return false
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", inv.InviteeEmail)
	m.SetHeader("Subject", fmt.Sprintf("%s 워크스페이스 초대", inv.WorkspaceName))
	m.SetBody("text/html", html)

	if err := s.send(ctx, m); err != nil {
		s.log.Errorf("failed to send invitation email to %s: %v", inv.InviteeEmail, err)
		return false
	}
	return true
}

func (s *Sender) render(inv Invitation) (string, error) {
	var buf bytes.Buffer
	err := invitationTemplate.Execute(&buf, struct {
		Invitation
		BaseURL string
	}{Invitation: inv, BaseURL: s.baseURL})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// send bounds DialAndSend with the configured timeout so one unresponsive
// SMTP server cannot stall the worker pool.
func (s *Sender) send(ctx context.Context, m *gomail.Message) error {
	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("SMTP send timed out after %s", s.timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
