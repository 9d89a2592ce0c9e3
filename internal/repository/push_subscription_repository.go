package repository

import (
	"context"

	"payshare-notifier/internal/domain/notification"
	payshare_errors "payshare-notifier/pkg/errors"
)

type pushSubscriptionRepository struct {
	db DBTX
}

func NewPushSubscriptionRepository(db DBTX) PushSubscriptionRepository {
	return &pushSubscriptionRepository{db: db}
}

func (r *pushSubscriptionRepository) ListByUser(ctx context.Context, userID int64) ([]notification.PushSubscription, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, user_id, endpoint, p256dh_key, auth_key, created_at
        FROM push_subscriptions
        WHERE user_id = $1
        ORDER BY created_at ASC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []notification.PushSubscription
	for rows.Next() {
		var sub notification.PushSubscription
		if err := rows.Scan(
			&sub.ID,
			&sub.UserID,
			&sub.Endpoint,
			&sub.P256dhKey,
			&sub.AuthKey,
			&sub.CreatedAt,
		); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *pushSubscriptionRepository) Create(ctx context.Context, sub *notification.PushSubscription) error {
	err := r.db.QueryRowContext(ctx, `
        INSERT INTO push_subscriptions (user_id, endpoint, p256dh_key, auth_key)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `, sub.UserID, sub.Endpoint, sub.P256dhKey, sub.AuthKey).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return payshare_errors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *pushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, userID int64, endpoint string) error {
	res, err := r.db.ExecContext(ctx, `
        DELETE FROM push_subscriptions
        WHERE user_id = $1 AND endpoint = $2
    `, userID, endpoint)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return payshare_errors.ErrNotFound
	}
	return nil
}

func (r *pushSubscriptionRepository) DeleteByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `DELETE FROM push_subscriptions WHERE id IN (` + buildPlaceholders(1, len(ids)) + `)`
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}
