package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"payshare-notifier/internal/domain/notification"
	payshare_errors "payshare-notifier/pkg/errors"
)

type preferenceRepository struct {
	db DBTX
}

func NewPreferenceRepository(db DBTX) PreferenceRepository {
	return &preferenceRepository{db: db}
}

// A member without a preference row is materialized as: every event type
// enabled, push on, slack off. The COALESCE/IS NULL branches below encode
// exactly that, so the queries never assume a row exists.
const recipientQuery = `
        SELECT u.id, u.email, COALESCE(u.nickname, ''), COALESCE(u.slack_webhook_url, ''),
               COALESCE(p.web_push_enabled, TRUE), COALESCE(p.slack_enabled, FALSE)
        FROM workspace_members m
        JOIN users u ON u.id = m.user_id
        LEFT JOIN notification_preferences p
               ON p.workspace_id = m.workspace_id AND p.user_id = m.user_id
        WHERE m.workspace_id = $1
          AND m.status = 'ACCEPTED'
          AND (p.user_id IS NULL OR $2 = ANY(p.enabled_event_types))
          AND ($3 = 0 OR u.id <> $3)
`

func (r *preferenceRepository) ListPushRecipients(ctx context.Context, workspaceID int64, eventType string, excludeUserID int64) ([]notification.Recipient, error) {
	query := recipientQuery + ` AND COALESCE(p.web_push_enabled, TRUE)`
	return r.listRecipients(ctx, query, workspaceID, eventType, excludeUserID)
}

func (r *preferenceRepository) ListSlackRecipients(ctx context.Context, workspaceID int64, eventType string, excludeUserID int64) ([]notification.Recipient, error) {
	query := recipientQuery + ` AND COALESCE(p.slack_enabled, FALSE)`
	return r.listRecipients(ctx, query, workspaceID, eventType, excludeUserID)
}

func (r *preferenceRepository) listRecipients(ctx context.Context, query string, workspaceID int64, eventType string, excludeUserID int64) ([]notification.Recipient, error) {
	rows, err := r.db.QueryContext(ctx, query, workspaceID, eventType, excludeUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipients []notification.Recipient
	for rows.Next() {
		var rec notification.Recipient
		if err := rows.Scan(
			&rec.UserID,
			&rec.Email,
			&rec.Nickname,
			&rec.SlackWebhookURL,
			&rec.WebPushEnabled,
			&rec.SlackEnabled,
		); err != nil {
			return nil, err
		}
		recipients = append(recipients, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recipients, nil
}

// GetPreference materializes the default for members without a stored row.
// The '*' sentinel in enabled types means every event type.
func (r *preferenceRepository) GetPreference(ctx context.Context, workspaceID, userID int64) (notification.Preference, error) {
	var pref notification.Preference
	var enabledTypes string
	err := r.db.QueryRowContext(ctx, `
        SELECT m.workspace_id, m.user_id,
               COALESCE(p.web_push_enabled, TRUE), COALESCE(p.slack_enabled, FALSE),
               COALESCE(array_to_string(p.enabled_event_types, ','), '*')
        FROM workspace_members m
        LEFT JOIN notification_preferences p
               ON p.workspace_id = m.workspace_id AND p.user_id = m.user_id
        WHERE m.workspace_id = $1 AND m.user_id = $2 AND m.status = 'ACCEPTED'
    `, workspaceID, userID).Scan(
		&pref.WorkspaceID,
		&pref.UserID,
		&pref.WebPushEnabled,
		&pref.SlackEnabled,
		&enabledTypes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notification.Preference{}, payshare_errors.ErrNotFound
		}
		return notification.Preference{}, err
	}

	if enabledTypes != "" {
		pref.EnabledEventTypes = strings.Split(enabledTypes, ",")
	}
	return pref, nil
}
