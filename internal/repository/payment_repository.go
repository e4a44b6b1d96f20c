package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Saishivram/paperroute/internal/model"
)

// ErrPaymentNotFound is returned when a payment cannot be found.
var ErrPaymentNotFound = errors.New("payment not found")

// PaymentRepo provides access to payment rows. Payment creation happens
// inside the recordPayment transaction driven by the handler, which also
// advances the owning subscription's schedule; this repo only exposes
// the pieces.
type PaymentRepo struct{ db *sql.DB }

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// InsertTx inserts a payment within the scope of an existing
// transaction, populating the generated ID on the record. The caller
// must commit or rollback.
func (r *PaymentRepo) InsertTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO payments (subscription_id, amount, payment_date, due_date, status)
		 VALUES (?,?,?,?,?)`,
		p.SubscriptionID, p.Amount, p.PaymentDate.Format(dateOnly), p.DueDate.Format(dateOnly), p.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// PaymentDetail is a payment with its subscription's customer expanded,
// matching what the dashboard payment table renders.
type PaymentDetail struct {
	ID             uint64  `json:"id"`
	SubscriptionID uint64  `json:"subscription_id"`
	Amount         float64 `json:"amount"`
	PaymentDate    string  `json:"payment_date"`
	DueDate        string  `json:"due_date"`
	Status         string  `json:"status"`
	CustomerName   string  `json:"customer_name"`
	NewspaperTitle string  `json:"newspaper_title"`
}

const paymentDetailQ = `SELECT p.id, p.subscription_id, p.amount, p.payment_date, p.due_date, p.status,
       c.name, n.title
FROM payments p
JOIN subscriptions s ON s.id = p.subscription_id
JOIN customers c ON c.id = s.customer_id
JOIN newspapers n ON n.id = s.newspaper_id`

func scanPaymentDetail(row interface{ Scan(...interface{}) error }) (PaymentDetail, error) {
	var d PaymentDetail
	var payDate, dueDate time.Time
	err := row.Scan(&d.ID, &d.SubscriptionID, &d.Amount, &payDate, &dueDate, &d.Status,
		&d.CustomerName, &d.NewspaperTitle)
	if err != nil {
		return d, err
	}
	d.PaymentDate = payDate.Format(dateOnly)
	d.DueDate = dueDate.Format(dateOnly)
	return d, nil
}

func (r *PaymentRepo) queryDetails(ctx context.Context, q string, args ...interface{}) ([]PaymentDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]PaymentDetail, 0)
	for rows.Next() {
		d, err := scanPaymentDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListByOwner returns all payments on the owner's subscriptions, most
// recent payment date first.
func (r *PaymentRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]PaymentDetail, error) {
	q := paymentDetailQ + " WHERE n.owner_id = ? ORDER BY p.payment_date DESC, p.id DESC"
	return r.queryDetails(ctx, q, ownerID)
}

// ListBySubscription returns all payments for one subscription, most
// recent first. Ownership of the subscription must be checked by the
// caller.
func (r *PaymentRepo) ListBySubscription(ctx context.Context, subscriptionID uint64) ([]PaymentDetail, error) {
	q := paymentDetailQ + " WHERE p.subscription_id = ? ORDER BY p.payment_date DESC, p.id DESC"
	return r.queryDetails(ctx, q, subscriptionID)
}

// ListLateByOwner returns the owner's late payments.
func (r *PaymentRepo) ListLateByOwner(ctx context.Context, ownerID uint64) ([]PaymentDetail, error) {
	q := paymentDetailQ + " WHERE n.owner_id = ? AND p.status = ? ORDER BY p.payment_date DESC, p.id DESC"
	return r.queryDetails(ctx, q, ownerID, model.PaymentLate)
}

// PaymentAnalytics aggregates payment activity over a date range.
// TotalPayments is a sum of amounts; the other two are counts.
type PaymentAnalytics struct {
	TotalPayments          float64 `json:"totalPayments"`
	LatePayments           int     `json:"latePayments"`
	SuspendedSubscriptions int     `json:"suspendedSubscriptions"`
}

// Analytics computes the payment analytics for an owner between start
// and end (inclusive). SuspendedSubscriptions ignores the date range by
// design: it reflects current subscription state.
func (r *PaymentRepo) Analytics(ctx context.Context, ownerID uint64, start, end time.Time) (PaymentAnalytics, error) {
	var a PaymentAnalytics
	const sumQ = `SELECT COALESCE(SUM(p.amount), 0) FROM payments p
	              JOIN subscriptions s ON s.id = p.subscription_id
	              JOIN newspapers n ON n.id = s.newspaper_id
	              WHERE n.owner_id = ? AND p.payment_date BETWEEN ? AND ?`
	if err := r.db.QueryRowContext(ctx, sumQ, ownerID,
		start.Format(dateOnly), end.Format(dateOnly)).Scan(&a.TotalPayments); err != nil {
		return a, err
	}
	const lateQ = `SELECT COUNT(*) FROM payments p
	               JOIN subscriptions s ON s.id = p.subscription_id
	               JOIN newspapers n ON n.id = s.newspaper_id
	               WHERE n.owner_id = ? AND p.status = ? AND p.payment_date BETWEEN ? AND ?`
	if err := r.db.QueryRowContext(ctx, lateQ, ownerID, model.PaymentLate,
		start.Format(dateOnly), end.Format(dateOnly)).Scan(&a.LatePayments); err != nil {
		return a, err
	}
	const suspQ = `SELECT COUNT(*) FROM subscriptions s
	               JOIN newspapers n ON n.id = s.newspaper_id
	               WHERE n.owner_id = ? AND s.status = ?`
	if err := r.db.QueryRowContext(ctx, suspQ, ownerID,
		model.SubscriptionSuspended).Scan(&a.SuspendedSubscriptions); err != nil {
		return a, err
	}
	return a, nil
}

// GetByID fetches a raw payment row by id.
func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (model.Payment, error) {
	var p model.Payment
	err := r.db.QueryRowContext(ctx,
		`SELECT id, subscription_id, amount, payment_date, due_date, status, created_at
		 FROM payments WHERE id=? LIMIT 1`, id).
		Scan(&p.ID, &p.SubscriptionID, &p.Amount, &p.PaymentDate, &p.DueDate, &p.Status, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrPaymentNotFound
	}
	return p, err
}
