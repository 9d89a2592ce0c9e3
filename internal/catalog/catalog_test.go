package catalog

import (
	"strings"
	"testing"

	"payshare-notifier/internal/domain/event"
)

func TestBuildKnownEventsNeverEmpty(t *testing.T) {
	cases := []struct {
		name    string
		payload event.Payload
	}{
		{event.NameLogCreated, event.LogPayload{WorkspaceName: "우리집", Title: "장보기", Amount: 15000, ActorNickname: "철수"}},
		{event.NameLogDeleted, event.LogPayload{Title: "장보기", ActorNickname: "철수"}},
		{event.NameAdjustmentCreated, event.AdjustmentPayload{TotalAmount: 42000, ActorNickname: "영희"}},
		{event.NameAdjustmentCompleted, event.AdjustmentPayload{TotalAmount: 42000}},
		{event.NameMemberJoined, event.MemberPayload{Nickname: "민수", WorkspaceName: "우리집"}},
		{event.NameMemberLeft, event.MemberPayload{Nickname: "민수", WorkspaceName: "우리집"}},
		{event.NameMemberRoleChanged, event.MemberPayload{Nickname: "민수", Role: "ADMIN"}},
		{event.NameWorkspaceDeleted, event.WorkspacePayload{WorkspaceName: "우리집"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := Build(tc.name, tc.payload)
			if msg.Title == "" {
				t.Fatalf("empty title for %s", tc.name)
			}
			if msg.Body == "" {
				t.Fatalf("empty body for %s", tc.name)
			}
			if msg == fallbackMessage {
				t.Fatalf("known event %s rendered the fallback", tc.name)
			}
		})
	}
}

func TestBuildUnknownEventFallsBack(t *testing.T) {
	msg := Build("category.created", nil)
	if msg != fallbackMessage {
		t.Fatalf("expected fallback message, got %+v", msg)
	}
}

func TestBuildMismatchedPayloadFallsBack(t *testing.T) {
	// A log event carrying an adjustment payload must not panic.
	msg := Build(event.NameLogCreated, event.AdjustmentPayload{})
	if msg != fallbackMessage {
		t.Fatalf("expected fallback message, got %+v", msg)
	}
}

func TestBuildGroupsAmounts(t *testing.T) {
	msg := Build(event.NameLogCreated, event.LogPayload{Amount: 1234567})
	if !strings.Contains(msg.Body, "1,234,567") {
		t.Fatalf("expected grouped amount in body, got %q", msg.Body)
	}
}

func TestBuildMissingFieldsRenderEmpty(t *testing.T) {
	msg := Build(event.NameMemberJoined, event.MemberPayload{})
	if msg.Title == "" || msg.Body == "" {
		t.Fatalf("missing fields must not produce empty messages: %+v", msg)
	}
	if strings.Contains(msg.Body, "<nil>") || strings.Contains(msg.Body, "%!") {
		t.Fatalf("bad interpolation: %q", msg.Body)
	}
}

func TestSlackTextFormat(t *testing.T) {
	text := SlackText(event.NameAdjustmentCompleted, event.AdjustmentPayload{TotalAmount: 42000})
	if !strings.HasPrefix(text, "*정산 완료*\n") {
		t.Fatalf("expected bold title and newline, got %q", text)
	}
	if !strings.Contains(text, "42,000") {
		t.Fatalf("expected grouped amount, got %q", text)
	}
}
