package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Saishivram/paperroute/internal/model"
)

// ErrNewspaperNotFound is returned when a newspaper cannot be found.
var ErrNewspaperNotFound = errors.New("newspaper not found")

// NewspaperRepo encapsulates all database queries related to newspapers.
// Newspapers are owned exclusively by one owner; all lookups used by
// mutating paths take the owner ID so tenancy is enforced here rather
// than in handlers.
type NewspaperRepo struct{ db *sql.DB }

// NewNewspaperRepo constructs a NewspaperRepo with the provided DB handle.
func NewNewspaperRepo(db *sql.DB) *NewspaperRepo { return &NewspaperRepo{db: db} }

const newspaperCols = "id, owner_id, name, title, publisher, frequency, price, created_at, updated_at"

func scanNewspaper(row interface{ Scan(...interface{}) error }) (model.Newspaper, error) {
	var n model.Newspaper
	err := row.Scan(&n.ID, &n.OwnerID, &n.Name, &n.Title, &n.Publisher, &n.Frequency, &n.Price,
		&n.CreatedAt, &n.UpdatedAt)
	return n, err
}

// Create inserts a new newspaper. On success the ID and timestamps are
// populated on the provided record.
func (r *NewspaperRepo) Create(ctx context.Context, n *model.Newspaper) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO newspapers (owner_id, name, title, publisher, frequency, price) VALUES (?,?,?,?,?,?)",
		n.OwnerID, n.Name, n.Title, n.Publisher, n.Frequency, n.Price)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	row := r.db.QueryRowContext(ctx, "SELECT "+newspaperCols+" FROM newspapers WHERE id=?", n.ID)
	fresh, err := scanNewspaper(row)
	if err != nil {
		return err
	}
	*n = fresh
	return nil
}

// GetByID fetches a newspaper by its ID regardless of owner.
func (r *NewspaperRepo) GetByID(ctx context.Context, id uint64) (model.Newspaper, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+newspaperCols+" FROM newspapers WHERE id=? LIMIT 1", id)
	n, err := scanNewspaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return n, ErrNewspaperNotFound
	}
	return n, err
}

// GetByIDAndOwner fetches a newspaper by id but only if it belongs to
// the specified owner.
func (r *NewspaperRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (model.Newspaper, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+newspaperCols+" FROM newspapers WHERE id=? AND owner_id=? LIMIT 1", id, ownerID)
	n, err := scanNewspaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return n, ErrNewspaperNotFound
	}
	return n, err
}

// ListByOwner returns all newspapers for a specific owner, newest first.
func (r *NewspaperRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Newspaper, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+newspaperCols+" FROM newspapers WHERE owner_id=? ORDER BY created_at DESC", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Newspaper, 0)
	for rows.Next() {
		n, err := scanNewspaper(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// NewspaperPatch carries the fields an owner may change on a newspaper.
type NewspaperPatch struct {
	Name      *string
	Title     *string
	Publisher *string
	Frequency *string
	Price     *float64
}

// Update applies a partial update to a newspaper owned by ownerID.
// sql.ErrNoRows is reported through a follow-up existence check in the
// handler; Update itself only surfaces driver errors.
func (r *NewspaperRepo) Update(ctx context.Context, id, ownerID uint64, p NewspaperPatch) error {
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 7)
	if p.Name != nil {
		sets = append(sets, "name=?")
		args = append(args, *p.Name)
	}
	if p.Title != nil {
		sets = append(sets, "title=?")
		args = append(args, *p.Title)
	}
	if p.Publisher != nil {
		sets = append(sets, "publisher=?")
		args = append(args, *p.Publisher)
	}
	if p.Frequency != nil {
		sets = append(sets, "frequency=?")
		args = append(args, *p.Frequency)
	}
	if p.Price != nil {
		sets = append(sets, "price=?")
		args = append(args, *p.Price)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id, ownerID)
	q := "UPDATE newspapers SET " + strings.Join(sets, ", ") + ", updated_at=CURRENT_TIMESTAMP WHERE id=? AND owner_id=?"
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

// DeleteByIDAndOwner removes a newspaper provided it belongs to the
// specified owner. ErrConflict is returned when subscriptions or
// deliveries still reference the paper.
func (r *NewspaperRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	var count int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM subscriptions WHERE newspaper_id=?", id).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM newspapers WHERE id=? AND owner_id=?", id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
