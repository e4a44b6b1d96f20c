package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Saishivram/paperroute/internal/model"
)

// ErrNotificationNotFound is returned when a notification cannot be
// found for the requesting owner.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepo provides CRUD over notifications scoped to their
// recipient owner. The sweep's idempotency check also lives here: one
// unread notification per subscription per due-date window.
type NotificationRepo struct{ db *sql.DB }

// NewNotificationRepo returns a new NotificationRepo bound to the given database.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Create inserts a notification. On success the ID and CreatedAt are
// populated on the provided record.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (recipient_id, subscription_id, message, type, is_read)
		 VALUES (?,?,?,?,?)`,
		n.RecipientID, n.SubscriptionID, n.Message, n.Type, n.Read)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT created_at FROM notifications WHERE id=?", n.ID).Scan(&n.CreatedAt)
}

const notificationCols = "id, recipient_id, subscription_id, message, type, is_read, created_at"

func scanNotification(row interface{ Scan(...interface{}) error }) (model.Notification, error) {
	var n model.Notification
	var subID sql.NullInt64
	err := row.Scan(&n.ID, &n.RecipientID, &subID, &n.Message, &n.Type, &n.Read, &n.CreatedAt)
	if err != nil {
		return n, err
	}
	if subID.Valid {
		s := uint64(subID.Int64)
		n.SubscriptionID = &s
	}
	return n, nil
}

// ListByRecipient returns all notifications for an owner, newest first.
func (r *NotificationRepo) ListByRecipient(ctx context.Context, ownerID uint64) ([]model.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+notificationCols+" FROM notifications WHERE recipient_id=? ORDER BY created_at DESC, id DESC",
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// ListUnread returns an owner's unread notifications, newest first.
func (r *NotificationRepo) ListUnread(ctx context.Context, ownerID uint64) ([]model.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+notificationCols+" FROM notifications WHERE recipient_id=? AND is_read=0 ORDER BY created_at DESC, id DESC",
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// CountUnread returns the number of unread notifications for an owner.
func (r *NotificationRepo) CountUnread(ctx context.Context, ownerID uint64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE recipient_id=? AND is_read=0", ownerID).Scan(&count)
	return count, err
}

// GetByIDAndRecipient fetches one notification if it belongs to the
// owner.
func (r *NotificationRepo) GetByIDAndRecipient(ctx context.Context, id, ownerID uint64) (model.Notification, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+notificationCols+" FROM notifications WHERE id=? AND recipient_id=? LIMIT 1", id, ownerID)
	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return n, ErrNotificationNotFound
	}
	return n, err
}

// MarkRead flips a notification to read. Marking an already-read row
// again is a no-op, not an error, so the operation is idempotent.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE notifications SET is_read=1 WHERE id=? AND recipient_id=?", id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Zero rows means missing, not already-read: MySQL still counts a
		// same-value UPDATE as matched only with CLIENT_FOUND_ROWS, so
		// check existence explicitly.
		var one int
		if err := r.db.QueryRowContext(ctx,
			"SELECT 1 FROM notifications WHERE id=? AND recipient_id=?", id, ownerID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotificationNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a notification belonging to the owner and reports
// whether the deleted row was still unread, so callers can adjust any
// cached unread counter.
func (r *NotificationRepo) Delete(ctx context.Context, id, ownerID uint64) (wasUnread bool, err error) {
	var isRead bool
	err = r.db.QueryRowContext(ctx,
		"SELECT is_read FROM notifications WHERE id=? AND recipient_id=?", id, ownerID).Scan(&isRead)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotificationNotFound
	}
	if err != nil {
		return false, err
	}
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM notifications WHERE id=? AND recipient_id=?", id, ownerID); err != nil {
		return false, err
	}
	return !isRead, nil
}

// UnreadExistsForSubscription reports whether an unread notification for
// the subscription was created after the given time. The sweep uses the
// subscription's due date as the window start so each due date yields at
// most one unread notification.
func (r *NotificationRepo) UnreadExistsForSubscription(ctx context.Context, ownerID, subscriptionID uint64, since time.Time) (bool, error) {
	const q = `SELECT 1 FROM notifications
	           WHERE recipient_id=? AND subscription_id=? AND is_read=0 AND created_at > ?
	           LIMIT 1`
	var one int
	err := r.db.QueryRowContext(ctx, q, ownerID, subscriptionID, since).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}
