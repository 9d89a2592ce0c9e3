package notification

import "time"

// Recipient is the per-event projection of a workspace member who should be
// notified. Built by the recipient resolver, never persisted.
type Recipient struct {
	UserID          int64
	Email           string
	Nickname        string
	SlackWebhookURL string
	WebPushEnabled  bool
	SlackEnabled    bool
}

// Preference mirrors the read-only per-(workspace,user) notification
// settings owned by the CRUD layer. A member without a row is materialized
// by the owning service as all event types enabled, push on, slack off.
type Preference struct {
	WorkspaceID       int64
	UserID            int64
	WebPushEnabled    bool
	SlackEnabled      bool
	EnabledEventTypes []string
}

// PushSubscription is one browser push registration for a user. A user may
// have several (one per device). Rows are deleted on explicit unsubscribe or
// when the push service reports the endpoint gone (404/410).
type PushSubscription struct {
	ID        int64
	UserID    int64
	Endpoint  string
	P256dhKey string
	AuthKey   string
	CreatedAt time.Time
}
