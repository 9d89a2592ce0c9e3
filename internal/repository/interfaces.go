package repository

import (
	"context"

	"payshare-notifier/internal/domain/notification"
)

// PreferenceRepository is the read-only query surface over notification
// preferences. The rows themselves are owned and mutated by the CRUD layer.
type PreferenceRepository interface {
	// ListPushRecipients returns accepted members of the workspace with web
	// push enabled and the event type in their enabled set. excludeUserID 0
	// means no exclusion.
	ListPushRecipients(ctx context.Context, workspaceID int64, eventType string, excludeUserID int64) ([]notification.Recipient, error)

	// ListSlackRecipients is the analogous query gated on the slack toggle.
	ListSlackRecipients(ctx context.Context, workspaceID int64, eventType string, excludeUserID int64) ([]notification.Recipient, error)

	// GetPreference returns the materialized preference row for one member.
	GetPreference(ctx context.Context, workspaceID, userID int64) (notification.Preference, error)
}

type PushSubscriptionRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]notification.PushSubscription, error)
	Create(ctx context.Context, sub *notification.PushSubscription) error
	DeleteByEndpoint(ctx context.Context, userID int64, endpoint string) error
	DeleteByIDs(ctx context.Context, ids []int64) error
}
