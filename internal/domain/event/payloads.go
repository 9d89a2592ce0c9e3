package event

import (
	"encoding/json"
	"fmt"
)

// Payload is the decoded, typed body of a domain event. One concrete type
// exists per event family so downstream builders can switch exhaustively
// instead of digging through untyped maps.
type Payload interface {
	isPayload()
}

type LogPayload struct {
	WorkspaceID   int64  `json:"workspace_id"`
	WorkspaceName string `json:"workspace_name"`
	LogID         int64  `json:"log_id"`
	Title         string `json:"title"`
	Amount        int64  `json:"amount"`
	ActorNickname string `json:"actor_nickname"`
	CategoryName  string `json:"category_name"`
}

type AdjustmentPayload struct {
	WorkspaceID   int64  `json:"workspace_id"`
	WorkspaceName string `json:"workspace_name"`
	AdjustmentID  int64  `json:"adjustment_id"`
	TotalAmount   int64  `json:"total_amount"`
	ActorNickname string `json:"actor_nickname"`
}

type MemberPayload struct {
	WorkspaceID   int64  `json:"workspace_id"`
	WorkspaceName string `json:"workspace_name"`
	Nickname      string `json:"nickname"`
	Role          string `json:"role"`
}

type WorkspacePayload struct {
	WorkspaceID   int64  `json:"workspace_id"`
	WorkspaceName string `json:"workspace_name"`
}

type InvitationPayload struct {
	WorkspaceID     int64  `json:"workspace_id"`
	WorkspaceName   string `json:"workspace_name"`
	InviteeEmail    string `json:"invitee_email"`
	InviterNickname string `json:"inviter_nickname"`
	InviterEmail    string `json:"inviter_email"`
}

func (LogPayload) isPayload()        {}
func (AdjustmentPayload) isPayload() {}
func (MemberPayload) isPayload()     {}
func (WorkspacePayload) isPayload()  {}
func (InvitationPayload) isPayload() {}

// WorkspaceOf returns the workspace a fan-out payload belongs to, or 0 for
// payloads without one.
func WorkspaceOf(p Payload) int64 {
	switch v := p.(type) {
	case LogPayload:
		return v.WorkspaceID
	case AdjustmentPayload:
		return v.WorkspaceID
	case MemberPayload:
		return v.WorkspaceID
	case WorkspacePayload:
		return v.WorkspaceID
	case InvitationPayload:
		return v.WorkspaceID
	}
	return 0
}

// DecodePayload binds the raw payload of a known event name to its typed
// representation.
func DecodePayload(name string, raw json.RawMessage) (Payload, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	switch name {
	case NameLogCreated, NameLogDeleted:
		var p LogPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("failed to decode log payload: %w", err)
		}
		return p, nil
	case NameAdjustmentCreated, NameAdjustmentCompleted:
		var p AdjustmentPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("failed to decode adjustment payload: %w", err)
		}
		return p, nil
	case NameMemberJoined, NameMemberLeft, NameMemberRoleChanged:
		var p MemberPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("failed to decode member payload: %w", err)
		}
		return p, nil
	case NameWorkspaceDeleted:
		var p WorkspacePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("failed to decode workspace payload: %w", err)
		}
		return p, nil
	case NameInvitationCreated:
		var p InvitationPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("failed to decode invitation payload: %w", err)
		}
		return p, nil
	}
	return nil, fmt.Errorf("no payload binding for event %q", name)
}
