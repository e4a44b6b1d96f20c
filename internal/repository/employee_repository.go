package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Saishivram/paperroute/internal/model"
	"github.com/Saishivram/paperroute/internal/utils"
)

// ErrEmployeeNotFound is returned when an employee cannot be found.
var ErrEmployeeNotFound = errors.New("employee not found")

// EmployeeRepo encapsulates all database queries related to employees.
// Employees always belong to exactly one owner; every mutating method
// takes the owner ID so tenancy is enforced in the repository layer.
type EmployeeRepo struct{ db *sql.DB }

// NewEmployeeRepo constructs an EmployeeRepo bound to the given database.
func NewEmployeeRepo(db *sql.DB) *EmployeeRepo { return &EmployeeRepo{db: db} }

const employeeCols = "id, owner_id, name, email, password_hash, phone, role, created_at, updated_at"

func scanEmployee(row interface{ Scan(...interface{}) error }) (model.Employee, error) {
	var e model.Employee
	var phone sql.NullString
	err := row.Scan(&e.ID, &e.OwnerID, &e.Name, &e.Email, &e.PasswordHash, &phone, &e.Role, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return e, err
	}
	if phone.Valid {
		p := phone.String
		e.Phone = &p
	}
	return e, nil
}

// Create inserts an employee for the owner and returns its ID. The
// password is hashed with bcrypt at the given cost before storage.
func (r *EmployeeRepo) Create(ctx context.Context, e *model.Employee, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))
	e.PasswordHash = hash
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO employees (owner_id, name, email, password_hash, phone, role) VALUES (?,?,?,?,?,?)",
		e.OwnerID, e.Name, e.Email, e.PasswordHash, e.Phone, e.Role)
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
	e.ID = uint64(id)
	// Query back the row so callers receive the DB-populated timestamps.
	row := r.db.QueryRowContext(ctx, "SELECT "+employeeCols+" FROM employees WHERE id=?", e.ID)
	fresh, err := scanEmployee(row)
	if err != nil {
		return err
	}
	*e = fresh
	return nil
}

// GetByEmail fetches an employee by normalized email, for login.
func (r *EmployeeRepo) GetByEmail(ctx context.Context, email string) (model.Employee, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.db.QueryRowContext(ctx, "SELECT "+employeeCols+" FROM employees WHERE email=? LIMIT 1", email)
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return e, ErrEmployeeNotFound
	}
	return e, err
}

// GetByID fetches an employee by id regardless of owner.
func (r *EmployeeRepo) GetByID(ctx context.Context, id uint64) (model.Employee, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+employeeCols+" FROM employees WHERE id=? LIMIT 1", id)
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return e, ErrEmployeeNotFound
	}
	return e, err
}

// GetByIDAndOwner fetches an employee by id but only if it belongs to
// the specified owner. ErrEmployeeNotFound is returned otherwise.
func (r *EmployeeRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (model.Employee, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+employeeCols+" FROM employees WHERE id=? AND owner_id=? LIMIT 1", id, ownerID)
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return e, ErrEmployeeNotFound
	}
	return e, err
}

// ListByOwner returns all employees of an owner, newest first.
func (r *EmployeeRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Employee, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+employeeCols+" FROM employees WHERE owner_id=? ORDER BY created_at DESC", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// EmployeePatch carries the fields an owner may change on an employee.
// Nil pointers leave the stored value untouched.
type EmployeePatch struct {
	Name         *string
	Email        *string
	Phone        *string
	Role         *string
	PasswordHash *string
}

// Update applies a partial update to an employee owned by ownerID.
func (r *EmployeeRepo) Update(ctx context.Context, id, ownerID uint64, p EmployeePatch) error {
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 7)
	if p.Name != nil {
		sets = append(sets, "name=?")
		args = append(args, *p.Name)
	}
	if p.Email != nil {
		sets = append(sets, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*p.Email)))
	}
	if p.Phone != nil {
		sets = append(sets, "phone=?")
		args = append(args, *p.Phone)
	}
	if p.Role != nil {
		sets = append(sets, "role=?")
		args = append(args, *p.Role)
	}
	if p.PasswordHash != nil {
		sets = append(sets, "password_hash=?")
		args = append(args, *p.PasswordHash)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id, ownerID)
	q := "UPDATE employees SET " + strings.Join(sets, ", ") + ", updated_at=CURRENT_TIMESTAMP WHERE id=? AND owner_id=?"
	_, err := r.db.ExecContext(ctx, q, args...)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrEmailExists
	}
	return err
}

// DeleteByIDAndOwner removes an employee if it belongs to the owner.
// sql.ErrNoRows is returned when nothing was deleted.
func (r *EmployeeRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM employees WHERE id=? AND owner_id=?", id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
