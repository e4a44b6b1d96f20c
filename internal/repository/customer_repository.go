package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Saishivram/paperroute/internal/model"
)

// ErrCustomerNotFound is returned when a customer cannot be found.
var ErrCustomerNotFound = errors.New("customer not found")

// CustomerRepo encapsulates all database queries related to customers.
// Customers are shared across the system; an owner sees the customers
// that hold subscriptions to the owner's newspapers, so the owner-scoped
// listing filters through subscription membership instead of a direct
// owner_id column.
type CustomerRepo struct{ db *sql.DB }

// NewCustomerRepo constructs a CustomerRepo bound to the given database.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

const customerCols = "id, name, email, address, phone, created_at, updated_at"

func scanCustomer(row interface{ Scan(...interface{}) error }) (model.Customer, error) {
	var c model.Customer
	var phone sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Address, &phone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	if phone.Valid {
		p := phone.String
		c.Phone = &p
	}
	return c, nil
}

// Create inserts a new customer. On success the ID and timestamps are
// populated on the provided record.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO customers (name, email, address, phone) VALUES (?,?,?,?)",
		c.Name, c.Email, c.Address, c.Phone)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	row := r.db.QueryRowContext(ctx, "SELECT "+customerCols+" FROM customers WHERE id=?", c.ID)
	fresh, err := scanCustomer(row)
	if err != nil {
		return err
	}
	*c = fresh
	return nil
}

// GetByID fetches a customer by id.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (model.Customer, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+customerCols+" FROM customers WHERE id=? LIMIT 1", id)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrCustomerNotFound
	}
	return c, err
}

// CustomerSubscription is the slice of subscription data embedded in
// customer reads so the dashboard can show what each customer takes.
type CustomerSubscription struct {
	ID              uint64  `json:"id"`
	NewspaperID     uint64  `json:"newspaper_id"`
	NewspaperTitle  string  `json:"newspaper_title"`
	Status          string  `json:"status"`
	MonthlyFee      float64 `json:"monthly_fee"`
	StartDate       string  `json:"start_date"`
	NextPaymentDate string  `json:"next_payment_date"`
}

// CustomerDetail is a customer together with their subscriptions.
type CustomerDetail struct {
	ID            uint64                 `json:"id"`
	Name          string                 `json:"name"`
	Email         string                 `json:"email"`
	Address       string                 `json:"address"`
	Phone         *string                `json:"phone,omitempty"`
	Subscriptions []CustomerSubscription `json:"subscriptions"`
}

// ListForOwner returns the customers visible to an owner: those holding
// at least one subscription to one of the owner's newspapers. Each
// customer carries the subscriptions linking them to this owner.
func (r *CustomerRepo) ListForOwner(ctx context.Context, ownerID uint64) ([]CustomerDetail, error) {
	const q = `SELECT DISTINCT c.id, c.name, c.email, c.address, c.phone
	           FROM customers c
	           JOIN subscriptions s ON s.customer_id = c.id
	           JOIN newspapers n ON n.id = s.newspaper_id
	           WHERE n.owner_id = ?
	           ORDER BY c.id`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]CustomerDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d CustomerDetail
		var phone sql.NullString
		if err := rows.Scan(&d.ID, &d.Name, &d.Email, &d.Address, &phone); err != nil {
			return nil, err
		}
		if phone.Valid {
			p := phone.String
			d.Phone = &p
		}
		d.Subscriptions = []CustomerSubscription{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}
	// Populate subscriptions for all listed customers in one query.
	const subQ = `SELECT s.customer_id, s.id, s.newspaper_id, n.title, s.status,
	                     s.monthly_fee, s.start_date, s.next_payment_date
	              FROM subscriptions s
	              JOIN newspapers n ON n.id = s.newspaper_id
	              WHERE n.owner_id = ?
	              ORDER BY s.customer_id, s.id`
	srows, err := r.db.QueryContext(ctx, subQ, ownerID)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var custID uint64
		var cs CustomerSubscription
		var start, next sql.NullTime
		if err := srows.Scan(&custID, &cs.ID, &cs.NewspaperID, &cs.NewspaperTitle, &cs.Status,
			&cs.MonthlyFee, &start, &next); err != nil {
			return nil, err
		}
		if start.Valid {
			cs.StartDate = start.Time.Format("2006-01-02")
		}
		if next.Valid {
			cs.NextPaymentDate = next.Time.Format("2006-01-02")
		}
		if idx, ok := index[custID]; ok {
			details[idx].Subscriptions = append(details[idx].Subscriptions, cs)
		}
	}
	return details, srows.Err()
}

// GetDetailForOwner returns one customer with the subscriptions linking
// them to the owner. ErrCustomerNotFound is returned when the customer
// does not exist at all; a customer with no subscriptions to this owner
// is still returned with an empty slice, matching the shared-customer
// model.
func (r *CustomerRepo) GetDetailForOwner(ctx context.Context, id, ownerID uint64) (*CustomerDetail, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &CustomerDetail{ID: c.ID, Name: c.Name, Email: c.Email, Address: c.Address, Phone: c.Phone,
		Subscriptions: []CustomerSubscription{}}
	const subQ = `SELECT s.id, s.newspaper_id, n.title, s.status, s.monthly_fee,
	                     s.start_date, s.next_payment_date
	              FROM subscriptions s
	              JOIN newspapers n ON n.id = s.newspaper_id
	              WHERE s.customer_id = ? AND n.owner_id = ?
	              ORDER BY s.id`
	rows, err := r.db.QueryContext(ctx, subQ, id, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var cs CustomerSubscription
		var start, next sql.NullTime
		if err := rows.Scan(&cs.ID, &cs.NewspaperID, &cs.NewspaperTitle, &cs.Status,
			&cs.MonthlyFee, &start, &next); err != nil {
			return nil, err
		}
		if start.Valid {
			cs.StartDate = start.Time.Format("2006-01-02")
		}
		if next.Valid {
			cs.NextPaymentDate = next.Time.Format("2006-01-02")
		}
		d.Subscriptions = append(d.Subscriptions, cs)
	}
	return d, rows.Err()
}

// CustomerPatch carries the fields a caller may change on a customer.
type CustomerPatch struct {
	Name    *string
	Email   *string
	Address *string
	Phone   *string
}

// Update applies a partial update to a customer.
func (r *CustomerRepo) Update(ctx context.Context, id uint64, p CustomerPatch) error {
	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	if p.Name != nil {
		sets = append(sets, "name=?")
		args = append(args, *p.Name)
	}
	if p.Email != nil {
		sets = append(sets, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*p.Email)))
	}
	if p.Address != nil {
		sets = append(sets, "address=?")
		args = append(args, *p.Address)
	}
	if p.Phone != nil {
		sets = append(sets, "phone=?")
		args = append(args, *p.Phone)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	q := "UPDATE customers SET " + strings.Join(sets, ", ") + ", updated_at=CURRENT_TIMESTAMP WHERE id=?"
	_, err := r.db.ExecContext(ctx, q, args...)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrEmailExists
	}
	return err
}

// Delete removes a customer. sql.ErrNoRows is returned when the row did
// not exist.
func (r *CustomerRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM customers WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
