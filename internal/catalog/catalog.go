package catalog

import (
	"fmt"

	"payshare-notifier/internal/domain/event"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RenderedMessage is the human-readable form of one event, derived on the
// fly and never stored.
type RenderedMessage struct {
	Title string
	Body  string
}

// Fallback for event names this version has no template for.
var fallbackMessage = RenderedMessage{
	Title: "알림",
	Body:  "새로운 알림이 있습니다.",
}

// printer groups digits the Korean way (1,000 units). message.Printer is
// safe for concurrent use.
var printer = message.NewPrinter(language.Korean)

// Build renders the title and body for one event. Unknown event names get
// the fixed fallback, never an error.
func Build(name string, payload event.Payload) RenderedMessage {
	switch name {
	case event.NameLogCreated:
		p, ok := payload.(event.LogPayload)
		if !ok {
			return fallbackMessage
		}
		return RenderedMessage{
			Title: "지출 기록 추가",
			Body:  fmt.Sprintf("%s님이 '%s' %s원 기록을 추가했습니다.", p.ActorNickname, p.Title, formatAmount(p.Amount)),
		}
	case event.NameLogDeleted:
		p, ok := payload.(event.LogPayload)
		if !ok {
			return fallbackMessage
		}
		return RenderedMessage{
			Title: "지출 기록 삭제",
			Body:  fmt.Sprintf("%s님이 '%s' 기록을 삭제했습니다.", p.ActorNickname, p.Title),
		}
	case event.NameAdjustmentCreated:
		p, ok := payload.(event.AdjustmentPayload)
		if !ok {
			return fallbackMessage
		}
		return RenderedMessage{
			Title: "정산 요청",
			Body:  fmt.Sprintf("%s님이 %s원 정산을 요청했습니다.", p.ActorNickname, formatAmount(p.TotalAmount)),
		}
	case event.NameAdjustmentCompleted:
		p, ok := payload.(event.AdjustmentPayload)
		if !ok {
			return fallbackMessage
		}
		return RenderedMessage{
			Title: "정산 완료",
			Body:  fmt.Sprintf("%s원 정산이 완료되었습니다.", formatAmount(p.TotalAmount)),
		}
	case event.NameMemberJoined:
		p, ok := payload.(event.MemberPayload)
		if !ok {
			return fallbackMessage
		}
		return RenderedMessage{
			Title: "새 멤버 참여",
			Body:  fmt.Sprintf("%s님이 %s에 참여했습니다.", p.Nickname, p.WorkspaceName),
		}
	case event.NameMemberLeft:
		p, ok := payload.(event.MemberPayload)
		if !ok {
			return fallbackMessage
		}
		return RenderedMessage{
			Title: "멤버 탈퇴",
			Body:  fmt.Sprintf("%s님이 %s에서 나갔습니다.", p.Nickname, p.WorkspaceName),
		}
	case event.NameMemberRoleChanged:
		p, ok := payload.(event.MemberPayload)
		if !ok {
			return fallbackMessage
		}
		return RenderedMessage{
			Title: "권한 변경",
			Body:  fmt.Sprintf("%s님의 권한이 %s(으)로 변경되었습니다.", p.Nickname, p.Role),
		}
	case event.NameWorkspaceDeleted:
		p, ok := payload.(event.WorkspacePayload)
		if !ok {
			return fallbackMessage
		}
		return RenderedMessage{
			Title: "워크스페이스 삭제",
			Body:  fmt.Sprintf("%s 워크스페이스가 삭제되었습니다.", p.WorkspaceName),
		}
	}
	return fallbackMessage
}

// SlackText renders the single formatted string posted to incoming
// webhooks: bold title, newline, body.
func SlackText(name string, payload event.Payload) string {
	msg := Build(name, payload)
	return fmt.Sprintf("*%s*\n%s", msg.Title, msg.Body)
}

func formatAmount(n int64) string {
	return printer.Sprintf("%d", n)
}
