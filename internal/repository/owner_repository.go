package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Saishivram/paperroute/internal/model"
	"github.com/Saishivram/paperroute/internal/utils"
)

// ErrOwnerNotFound is returned when an owner cannot be found in the DB.
var ErrOwnerNotFound = errors.New("owner not found")

// OwnerRepo encapsulates all database queries related to owner accounts.
type OwnerRepo struct{ db *sql.DB }

// NewOwnerRepo constructs an OwnerRepo bound to the given database.
func NewOwnerRepo(db *sql.DB) *OwnerRepo { return &OwnerRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning multiple repositories.
func (r *OwnerRepo) DB() *sql.DB { return r.db }

// Create inserts an owner and returns its ID. The password is hashed
// with bcrypt at the given cost before storage.
func (r *OwnerRepo) Create(ctx context.Context, name, email, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO owners (name, email, password_hash) VALUES (?,?,?)",
		name, email, hash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches an owner by normalized email.
func (r *OwnerRepo) GetByEmail(ctx context.Context, email string) (model.Owner, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var o model.Owner
	err := r.db.QueryRowContext(ctx,
		"SELECT id,name,email,password_hash,created_at,updated_at FROM owners WHERE email=? LIMIT 1",
		email).Scan(&o.ID, &o.Name, &o.Email, &o.PasswordHash, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return o, ErrOwnerNotFound
	}
	return o, err
}

// GetByID fetches an owner by id.
func (r *OwnerRepo) GetByID(ctx context.Context, id uint64) (model.Owner, error) {
	var o model.Owner
	err := r.db.QueryRowContext(ctx,
		"SELECT id,name,email,password_hash,created_at,updated_at FROM owners WHERE id=? LIMIT 1",
		id).Scan(&o.ID, &o.Name, &o.Email, &o.PasswordHash, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return o, ErrOwnerNotFound
	}
	return o, err
}

// OwnerProfilePatch carries the fields an owner may change on their own
// profile. Nil pointers leave the stored value untouched. PasswordHash
// must already be hashed by the caller.
type OwnerProfilePatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// UpdateProfile applies a partial profile update. It returns
// ErrOwnerNotFound when the owner does not exist and ErrEmailExists when
// the new email collides with another account.
func (r *OwnerRepo) UpdateProfile(ctx context.Context, id uint64, p OwnerProfilePatch) error {
	sets := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)
	if p.Name != nil {
		sets = append(sets, "name=?")
		args = append(args, *p.Name)
	}
	if p.Email != nil {
		sets = append(sets, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*p.Email)))
	}
	if p.PasswordHash != nil {
		sets = append(sets, "password_hash=?")
		args = append(args, *p.PasswordHash)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	q := "UPDATE owners SET " + strings.Join(sets, ", ") + ", updated_at=CURRENT_TIMESTAMP WHERE id=?"
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is also zero when the values did not change; check
		// existence so a same-value update is not reported as missing.
		var one int
		if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM owners WHERE id=?", id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrOwnerNotFound
			}
			return err
		}
	}
	return nil
}
