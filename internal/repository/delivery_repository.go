package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Saishivram/paperroute/internal/model"
)

// ErrDeliveryNotFound is returned when a delivery cannot be found.
var ErrDeliveryNotFound = errors.New("delivery not found")

// DeliveryRepo provides access to delivery rows and the status
// transition guard. The pending→delivered / pending→failed state
// machine is enforced in SQL: the UPDATE only matches pending rows, so
// a terminal row is never rewritten even under concurrent requests.
type DeliveryRepo struct{ db *sql.DB }

// NewDeliveryRepo returns a new DeliveryRepo bound to the given database.
func NewDeliveryRepo(db *sql.DB) *DeliveryRepo { return &DeliveryRepo{db: db} }

// Create inserts a new pending delivery. The active-subscription
// precondition is checked by the handler before calling this.
func (r *DeliveryRepo) Create(ctx context.Context, d *model.Delivery) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO deliveries (employee_id, customer_id, newspaper_id, delivery_date, status, status_changed_at)
		 VALUES (?,?,?,?,?,NOW())`,
		d.EmployeeID, d.CustomerID, d.NewspaperID, d.DeliveryDate.Format(dateOnly), model.DeliveryPending)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	d.Status = model.DeliveryPending
	return nil
}

// GetByID fetches a delivery by id.
func (r *DeliveryRepo) GetByID(ctx context.Context, id uint64) (model.Delivery, error) {
	var d model.Delivery
	err := r.db.QueryRowContext(ctx,
		`SELECT id, employee_id, customer_id, newspaper_id, delivery_date, status, status_changed_at, created_at
		 FROM deliveries WHERE id=? LIMIT 1`, id).
		Scan(&d.ID, &d.EmployeeID, &d.CustomerID, &d.NewspaperID, &d.DeliveryDate,
			&d.Status, &d.StatusChangedAt, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrDeliveryNotFound
	}
	return d, err
}

// UpdateStatus moves a pending delivery to a terminal status. The WHERE
// clause only matches pending rows; when nothing is affected the row is
// either missing (ErrDeliveryNotFound) or already terminal
// (ErrConflict).
func (r *DeliveryRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE deliveries SET status=?, status_changed_at=NOW() WHERE id=? AND status=?`,
		status, id, model.DeliveryPending)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var current string
		if err := r.db.QueryRowContext(ctx,
			"SELECT status FROM deliveries WHERE id=?", id).Scan(&current); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrDeliveryNotFound
			}
			return err
		}
		return ErrConflict
	}
	return nil
}

// DeliveryDetail is a delivery with employee, customer and newspaper
// names expanded for the dashboard tables.
type DeliveryDetail struct {
	ID              uint64    `json:"id"`
	EmployeeID      uint64    `json:"employee_id"`
	CustomerID      uint64    `json:"customer_id"`
	NewspaperID     uint64    `json:"newspaper_id"`
	DeliveryDate    string    `json:"delivery_date"`
	Status          string    `json:"status"`
	StatusChangedAt time.Time `json:"status_changed_at"`
	EmployeeName    string    `json:"employee_name"`
	CustomerName    string    `json:"customer_name"`
	NewspaperTitle  string    `json:"newspaper_title"`
}

const deliveryDetailQ = `SELECT d.id, d.employee_id, d.customer_id, d.newspaper_id, d.delivery_date,
       d.status, d.status_changed_at, e.name, c.name, n.title
FROM deliveries d
JOIN employees e ON e.id = d.employee_id
JOIN customers c ON c.id = d.customer_id
JOIN newspapers n ON n.id = d.newspaper_id`

func (r *DeliveryRepo) queryDetails(ctx context.Context, q string, args ...interface{}) ([]DeliveryDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]DeliveryDetail, 0)
	for rows.Next() {
		var d DeliveryDetail
		var date time.Time
		if err := rows.Scan(&d.ID, &d.EmployeeID, &d.CustomerID, &d.NewspaperID, &date,
			&d.Status, &d.StatusChangedAt, &d.EmployeeName, &d.CustomerName, &d.NewspaperTitle); err != nil {
			return nil, err
		}
		d.DeliveryDate = date.Format(dateOnly)
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListByOwner returns every delivery on the owner's newspapers, newest
// first.
func (r *DeliveryRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]DeliveryDetail, error) {
	q := deliveryDetailQ + " WHERE n.owner_id = ? ORDER BY d.id DESC"
	return r.queryDetails(ctx, q, ownerID)
}

// ListWorklist returns the owner's active operational view: all pending
// deliveries plus terminal ones whose status changed within the grace
// window. The filter is computed fresh from status_changed_at on every
// call, so a reload always reflects stored state rather than any
// client-side countdown.
func (r *DeliveryRepo) ListWorklist(ctx context.Context, ownerID uint64, grace time.Duration) ([]DeliveryDetail, error) {
	q := deliveryDetailQ + ` WHERE n.owner_id = ?
	      AND (d.status = ? OR d.status_changed_at > ?)
	      ORDER BY d.id DESC`
	cutoff := time.Now().UTC().Add(-grace)
	return r.queryDetails(ctx, q, ownerID, model.DeliveryPending, cutoff)
}

// ListByDateRange returns the owner's deliveries dated between start and
// end inclusive.
func (r *DeliveryRepo) ListByDateRange(ctx context.Context, ownerID uint64, start, end time.Time) ([]DeliveryDetail, error) {
	q := deliveryDetailQ + " WHERE n.owner_id = ? AND d.delivery_date BETWEEN ? AND ? ORDER BY d.id DESC"
	return r.queryDetails(ctx, q, ownerID, start.Format(dateOnly), end.Format(dateOnly))
}

// ListByEmployee returns the owner's deliveries assigned to one employee.
func (r *DeliveryRepo) ListByEmployee(ctx context.Context, ownerID, employeeID uint64) ([]DeliveryDetail, error) {
	q := deliveryDetailQ + " WHERE n.owner_id = ? AND d.employee_id = ? ORDER BY d.id DESC"
	return r.queryDetails(ctx, q, ownerID, employeeID)
}

// GroupCount is one row of a grouped delivery count.
type GroupCount struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DeliveryAnalytics aggregates delivery activity over a date range.
type DeliveryAnalytics struct {
	TotalDeliveries       int          `json:"totalDeliveries"`
	DeliveriesByEmployee  []GroupCount `json:"deliveriesByEmployee"`
	DeliveriesByNewspaper []GroupCount `json:"deliveriesByNewspaper"`
}

// Analytics computes delivery analytics for an owner between start and
// end (inclusive): a total plus per-employee and per-newspaper counts.
func (r *DeliveryRepo) Analytics(ctx context.Context, ownerID uint64, start, end time.Time) (DeliveryAnalytics, error) {
	var a DeliveryAnalytics
	s, e := start.Format(dateOnly), end.Format(dateOnly)
	const totalQ = `SELECT COUNT(*) FROM deliveries d
	                JOIN newspapers n ON n.id = d.newspaper_id
	                WHERE n.owner_id = ? AND d.delivery_date BETWEEN ? AND ?`
	if err := r.db.QueryRowContext(ctx, totalQ, ownerID, s, e).Scan(&a.TotalDeliveries); err != nil {
		return a, err
	}
	const byEmpQ = `SELECT d.employee_id, emp.name, COUNT(*)
	                FROM deliveries d
	                JOIN employees emp ON emp.id = d.employee_id
	                JOIN newspapers n ON n.id = d.newspaper_id
	                WHERE n.owner_id = ? AND d.delivery_date BETWEEN ? AND ?
	                GROUP BY d.employee_id, emp.name`
	byEmp, err := r.groupCounts(ctx, byEmpQ, ownerID, s, e)
	if err != nil {
		return a, err
	}
	a.DeliveriesByEmployee = byEmp
	const byPaperQ = `SELECT d.newspaper_id, n.title, COUNT(*)
	                  FROM deliveries d
	                  JOIN newspapers n ON n.id = d.newspaper_id
	                  WHERE n.owner_id = ? AND d.delivery_date BETWEEN ? AND ?
	                  GROUP BY d.newspaper_id, n.title`
	byPaper, err := r.groupCounts(ctx, byPaperQ, ownerID, s, e)
	if err != nil {
		return a, err
	}
	a.DeliveriesByNewspaper = byPaper
	return a, nil
}

func (r *DeliveryRepo) groupCounts(ctx context.Context, q string, args ...interface{}) ([]GroupCount, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]GroupCount, 0)
	for rows.Next() {
		var g GroupCount
		if err := rows.Scan(&g.ID, &g.Name, &g.Count); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// OwnerID resolves the owner of a delivery through its newspaper.
func (r *DeliveryRepo) OwnerID(ctx context.Context, id uint64) (uint64, error) {
	const q = `SELECT n.owner_id FROM deliveries d
	           JOIN newspapers n ON n.id = d.newspaper_id
	           WHERE d.id = ?`
	var ownerID uint64
	err := r.db.QueryRowContext(ctx, q, id).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrDeliveryNotFound
	}
	return ownerID, err
}
