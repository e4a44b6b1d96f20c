package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Saishivram/paperroute/internal/model"
)

// ErrSubscriptionNotFound is returned when a subscription cannot be found.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// SubscriptionRepo provides CRUD operations for subscriptions and the
// transactional create that seeds the first pending payment. All DATE
// columns are written in YYYY-MM-DD form and assumed to be UTC.
type SubscriptionRepo struct{ db *sql.DB }

// NewSubscriptionRepo returns a new SubscriptionRepo bound to the given database.
func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning subscription and payment writes.
func (r *SubscriptionRepo) DB() *sql.DB { return r.db }

const subscriptionCols = "id, customer_id, newspaper_id, start_date, end_date, status, monthly_fee, next_payment_date, created_at"

const dateOnly = "2006-01-02"

func scanSubscription(row interface{ Scan(...interface{}) error }) (model.Subscription, error) {
	var s model.Subscription
	var end sql.NullTime
	err := row.Scan(&s.ID, &s.CustomerID, &s.NewspaperID, &s.StartDate, &end, &s.Status,
		&s.MonthlyFee, &s.NextPaymentDate, &s.CreatedAt)
	if err != nil {
		return s, err
	}
	if end.Valid {
		e := end.Time
		s.EndDate = &e
	}
	return s, nil
}

// CreateWithSeedPayment inserts a subscription and its companion pending
// payment inside one transaction: both rows land or neither does. The
// seed payment's amount equals the monthly fee and its due date equals
// the subscription's next_payment_date. On success the subscription's ID
// is populated.
func (r *SubscriptionRepo) CreateWithSeedPayment(ctx context.Context, s *model.Subscription) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var end interface{}
	if s.EndDate != nil {
		end = s.EndDate.Format(dateOnly)
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO subscriptions (customer_id, newspaper_id, start_date, end_date, status, monthly_fee, next_payment_date)
		 VALUES (?,?,?,?,?,?,?)`,
		s.CustomerID, s.NewspaperID, s.StartDate.Format(dateOnly), end, s.Status,
		s.MonthlyFee, s.NextPaymentDate.Format(dateOnly))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)

	// Seed payment: pending, amount = monthly fee, due on the first
	// next_payment_date. payment_date records when the row was opened.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO payments (subscription_id, amount, payment_date, due_date, status)
		 VALUES (?,?,?,?,?)`,
		s.ID, s.MonthlyFee, s.StartDate.Format(dateOnly), s.NextPaymentDate.Format(dateOnly),
		model.PaymentPending)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID fetches a subscription by id.
func (r *SubscriptionRepo) GetByID(ctx context.Context, id uint64) (model.Subscription, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+subscriptionCols+" FROM subscriptions WHERE id=? LIMIT 1", id)
	s, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrSubscriptionNotFound
	}
	return s, err
}

// GetTx fetches a subscription by id within a transaction. recordPayment
// reads the schedule and advances it under the same tx as the payment
// insert.
func (r *SubscriptionRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Subscription, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+subscriptionCols+" FROM subscriptions WHERE id=? LIMIT 1", id)
	s, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrSubscriptionNotFound
	}
	return s, err
}

// OwnerID resolves the owner of a subscription through its newspaper.
func (r *SubscriptionRepo) OwnerID(ctx context.Context, id uint64) (uint64, error) {
	const q = `SELECT n.owner_id FROM subscriptions s
	           JOIN newspapers n ON n.id = s.newspaper_id
	           WHERE s.id = ?`
	var ownerID uint64
	err := r.db.QueryRowContext(ctx, q, id).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrSubscriptionNotFound
	}
	return ownerID, err
}

// SubscriptionDetail is a subscription with its customer and newspaper
// expanded, as returned by the owner-facing read endpoints.
type SubscriptionDetail struct {
	ID              uint64  `json:"id"`
	CustomerID      uint64  `json:"customer_id"`
	NewspaperID     uint64  `json:"newspaper_id"`
	StartDate       string  `json:"start_date"`
	EndDate         *string `json:"end_date,omitempty"`
	Status          string  `json:"status"`
	MonthlyFee      float64 `json:"monthly_fee"`
	NextPaymentDate string  `json:"next_payment_date"`
	Customer        struct {
		Name    string  `json:"name"`
		Email   string  `json:"email"`
		Address string  `json:"address"`
		Phone   *string `json:"phone,omitempty"`
	} `json:"customer"`
	Newspaper struct {
		Name  string  `json:"name"`
		Title string  `json:"title"`
		Price float64 `json:"price"`
	} `json:"newspaper"`
}

const subscriptionDetailQ = `SELECT s.id, s.customer_id, s.newspaper_id, s.start_date, s.end_date,
       s.status, s.monthly_fee, s.next_payment_date,
       c.name, c.email, c.address, c.phone,
       n.name, n.title, n.price
FROM subscriptions s
JOIN customers c ON c.id = s.customer_id
JOIN newspapers n ON n.id = s.newspaper_id`

func scanSubscriptionDetail(row interface{ Scan(...interface{}) error }) (SubscriptionDetail, error) {
	var d SubscriptionDetail
	var start, next time.Time
	var end sql.NullTime
	var phone sql.NullString
	err := row.Scan(&d.ID, &d.CustomerID, &d.NewspaperID, &start, &end,
		&d.Status, &d.MonthlyFee, &next,
		&d.Customer.Name, &d.Customer.Email, &d.Customer.Address, &phone,
		&d.Newspaper.Name, &d.Newspaper.Title, &d.Newspaper.Price)
	if err != nil {
		return d, err
	}
	d.StartDate = start.Format(dateOnly)
	d.NextPaymentDate = next.Format(dateOnly)
	if end.Valid {
		e := end.Time.Format(dateOnly)
		d.EndDate = &e
	}
	if phone.Valid {
		p := phone.String
		d.Customer.Phone = &p
	}
	return d, nil
}

// GetDetail returns one subscription with customer and newspaper
// expanded, restricted to the given owner's newspapers.
func (r *SubscriptionRepo) GetDetail(ctx context.Context, id, ownerID uint64) (*SubscriptionDetail, error) {
	q := subscriptionDetailQ + " WHERE s.id = ? AND n.owner_id = ?"
	d, err := scanSubscriptionDetail(r.db.QueryRowContext(ctx, q, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDetails returns all subscriptions on the owner's newspapers with
// customer and newspaper expanded, newest first.
func (r *SubscriptionRepo) ListDetails(ctx context.Context, ownerID uint64) ([]SubscriptionDetail, error) {
	q := subscriptionDetailQ + " WHERE n.owner_id = ? ORDER BY s.id DESC"
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]SubscriptionDetail, 0)
	for rows.Next() {
		d, err := scanSubscriptionDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SubscriptionPatch carries the only fields a PATCH may change. Nil
// pointers leave the stored value untouched; EndDate uses a double
// pointer so callers can distinguish "not supplied" from an explicit
// null that clears the column.
type SubscriptionPatch struct {
	StartDate       *time.Time
	EndDate         **time.Time
	Status          *string
	MonthlyFee      *float64
	NextPaymentDate *time.Time
}

// Update applies a partial update to a subscription.
func (r *SubscriptionRepo) Update(ctx context.Context, id uint64, p SubscriptionPatch) error {
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	if p.StartDate != nil {
		sets = append(sets, "start_date=?")
		args = append(args, p.StartDate.Format(dateOnly))
	}
	if p.EndDate != nil {
		sets = append(sets, "end_date=?")
		if *p.EndDate == nil {
			args = append(args, nil)
		} else {
			args = append(args, (*p.EndDate).Format(dateOnly))
		}
	}
	if p.Status != nil {
		sets = append(sets, "status=?")
		args = append(args, *p.Status)
	}
	if p.MonthlyFee != nil {
		sets = append(sets, "monthly_fee=?")
		args = append(args, *p.MonthlyFee)
	}
	if p.NextPaymentDate != nil {
		sets = append(sets, "next_payment_date=?")
		args = append(args, p.NextPaymentDate.Format(dateOnly))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	q := "UPDATE subscriptions SET " + strings.Join(sets, ", ") + " WHERE id=?"
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

// Cancel soft-cancels a subscription: only the status column changes.
// Rows are never deleted so payment history stays intact.
func (r *SubscriptionRepo) Cancel(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE subscriptions SET status=? WHERE id=?", model.SubscriptionCancelled, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either missing or already cancelled; distinguish via lookup.
		var one int
		if err := r.db.QueryRowContext(ctx,
			"SELECT 1 FROM subscriptions WHERE id=?", id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSubscriptionNotFound
			}
			return err
		}
	}
	return nil
}

// AdvanceNextPaymentDateTx sets the subscription's next_payment_date
// within a transaction. Used by recordPayment after computing the
// one-month advance.
func (r *SubscriptionRepo) AdvanceNextPaymentDateTx(ctx context.Context, tx *sql.Tx, id uint64, next time.Time) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE subscriptions SET next_payment_date=? WHERE id=?", next.Format(dateOnly), id)
	return err
}

// ActiveExists reports whether an active subscription links the customer
// and newspaper. Delivery assignment calls this at assignment time so a
// cancellation takes effect immediately.
func (r *SubscriptionRepo) ActiveExists(ctx context.Context, customerID, newspaperID uint64) (bool, error) {
	const q = `SELECT 1 FROM subscriptions
	           WHERE customer_id=? AND newspaper_id=? AND status=? LIMIT 1`
	var one int
	err := r.db.QueryRowContext(ctx, q, customerID, newspaperID, model.SubscriptionActive).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// SweepRow is the slice of subscription data the notification sweep
// needs: the schedule plus display names for the message text.
type SweepRow struct {
	SubscriptionID  uint64
	NextPaymentDate time.Time
	MonthlyFee      float64
	CustomerName    string
	NewspaperTitle  string
}

// ListActiveForSweep returns every active subscription on the owner's
// newspapers with the names needed to build notification messages.
func (r *SubscriptionRepo) ListActiveForSweep(ctx context.Context, ownerID uint64) ([]SweepRow, error) {
	const q = `SELECT s.id, s.next_payment_date, s.monthly_fee, c.name, n.title
	           FROM subscriptions s
	           JOIN customers c ON c.id = s.customer_id
	           JOIN newspapers n ON n.id = s.newspaper_id
	           WHERE n.owner_id = ? AND s.status = ?`
	rows, err := r.db.QueryContext(ctx, q, ownerID, model.SubscriptionActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]SweepRow, 0)
	for rows.Next() {
		var sr SweepRow
		if err := rows.Scan(&sr.SubscriptionID, &sr.NextPaymentDate, &sr.MonthlyFee,
			&sr.CustomerName, &sr.NewspaperTitle); err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

// CountByStatus returns the number of subscriptions in the given status
// across the owner's newspapers. Used by the payments analytics view.
func (r *SubscriptionRepo) CountByStatus(ctx context.Context, ownerID uint64, status string) (int, error) {
	const q = `SELECT COUNT(*) FROM subscriptions s
	           JOIN newspapers n ON n.id = s.newspaper_id
	           WHERE n.owner_id = ? AND s.status = ?`
	var count int
	err := r.db.QueryRowContext(ctx, q, ownerID, status).Scan(&count)
	return count, err
}
