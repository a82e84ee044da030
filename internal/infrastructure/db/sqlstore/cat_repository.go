package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ollivarila/wsk2/internal/core/domain"
)

const catColumns = `id, cat_name, weight, filename, birthdate, lat, lng, owner_id`

// CatRepository implements ports.CatRepository on sqlx.
type CatRepository struct {
	db *sqlx.DB
}

func NewCatRepository(db *sqlx.DB) *CatRepository { return &CatRepository{db: db} }

type catRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"cat_name"`
	Weight    float64   `db:"weight"`
	Filename  string    `db:"filename"`
	Birthdate time.Time `db:"birthdate"`
	Lat       float64   `db:"lat"`
	Lng       float64   `db:"lng"`
	OwnerID   string    `db:"owner_id"`
}

func (r catRow) toDomain() *domain.Cat {
	return &domain.Cat{
		ID:          r.ID,
		Name:        r.Name,
		Weight:      r.Weight,
		Filename:    r.Filename,
		Birthdate:   r.Birthdate.UTC(),
		Coordinates: domain.Coordinates{Lat: r.Lat, Lng: r.Lng},
		OwnerID:     r.OwnerID,
	}
}

func (r *CatRepository) List(ctx context.Context) ([]*domain.Cat, error) {
	return r.selectCats(ctx, "list cats", `SELECT `+catColumns+` FROM cats ORDER BY id`)
}

func (r *CatRepository) FindByID(ctx context.Context, id string) (*domain.Cat, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var row catRow
	q := r.db.Rebind(`SELECT ` + catColumns + ` FROM cats WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("cat %s", id)
		}
		return nil, domain.StoreError("find cat", err)
	}
	return row.toDomain(), nil
}

func (r *CatRepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.Cat, error) {
	return r.selectCats(ctx, "find cats by owner",
		`SELECT `+catColumns+` FROM cats WHERE owner_id = ? ORDER BY id`, ownerID)
}

// FindWithinBox expects a normalized box; edges are inclusive.
func (r *CatRepository) FindWithinBox(ctx context.Context, box domain.Box) ([]*domain.Cat, error) {
	return r.selectCats(ctx, "find cats in box",
		`SELECT `+catColumns+` FROM cats
		  WHERE lat BETWEEN ? AND ? AND lng BETWEEN ? AND ? ORDER BY id`,
		box.BottomLeft.Lat, box.TopRight.Lat, box.BottomLeft.Lng, box.TopRight.Lng)
}

func (r *CatRepository) selectCats(ctx context.Context, op, q string, args ...any) ([]*domain.Cat, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows []catRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, domain.StoreError(op, err)
	}
	cats := make([]*domain.Cat, 0, len(rows))
	for _, row := range rows {
		cats = append(cats, row.toDomain())
	}
	return cats, nil
}

func (r *CatRepository) Create(ctx context.Context, cat *domain.Cat) (*domain.Cat, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := catRow{
		ID:        uuid.NewString(),
		Name:      cat.Name,
		Weight:    cat.Weight,
		Filename:  cat.Filename,
		Birthdate: cat.Birthdate.UTC(),
		Lat:       cat.Coordinates.Lat,
		Lng:       cat.Coordinates.Lng,
		OwnerID:   cat.OwnerID,
	}
	const q = `INSERT INTO cats (` + catColumns + `)
	  VALUES (:id, :cat_name, :weight, :filename, :birthdate, :lat, :lng, :owner_id)`
	if _, err := r.db.NamedExecContext(ctx, q, row); err != nil {
		return nil, translate("insert cat", err)
	}
	return row.toDomain(), nil
}

// scope renders the WHERE clause of an id write, keyed by owner when set.
func scope(id, ownerID string) (string, []any) {
	if ownerID == "" {
		return ` WHERE id = ?`, []any{id}
	}
	return ` WHERE id = ? AND owner_id = ?`, []any{id, ownerID}
}

// MergeUpdate sets only the fields present in patch. A non-empty ownerID
// makes the write conditional on the current owner.
func (r *CatRepository) MergeUpdate(ctx context.Context, id, ownerID string, patch domain.CatPatch) (*domain.Cat, error) {
	where, whereArgs := scope(id, ownerID)
	cols, args := catAssignments(patch)

	var q string
	if len(cols) == 0 {
		q = `SELECT ` + catColumns + ` FROM cats` + where
	} else {
		q = `UPDATE cats SET ` + setClause(cols) + where + ` RETURNING ` + catColumns
	}
	args = append(args, whereArgs...)

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var row catRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(q), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("cat %s", id)
		}
		return nil, translate("update cat", err)
	}
	return row.toDomain(), nil
}

func (r *CatRepository) Delete(ctx context.Context, id, ownerID string) (*domain.Cat, error) {
	where, args := scope(id, ownerID)

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var row catRow
	q := r.db.Rebind(`DELETE FROM cats` + where + ` RETURNING ` + catColumns)
	if err := r.db.GetContext(ctx, &row, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("cat %s", id)
		}
		return nil, domain.StoreError("delete cat", err)
	}
	return row.toDomain(), nil
}

func (r *CatRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM cats WHERE owner_id = ?`), ownerID); err != nil {
		return domain.StoreError("delete cats by owner", err)
	}
	return nil
}

// IsCatOwnedBy is an existence query; no cat column leaves the database.
func (r *CatRepository) IsCatOwnedBy(ctx context.Context, catID, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var owned bool
	q := r.db.Rebind(`SELECT EXISTS (SELECT 1 FROM cats WHERE id = ? AND owner_id = ?)`)
	if err := r.db.GetContext(ctx, &owned, q, catID, userID); err != nil {
		return false, domain.StoreError("check cat owner", err)
	}
	return owned, nil
}

func catAssignments(p domain.CatPatch) ([]string, []any) {
	var (
		cols []string
		args []any
	)
	if p.Name != nil {
		cols, args = append(cols, "cat_name"), append(args, *p.Name)
	}
	if p.Weight != nil {
		cols, args = append(cols, "weight"), append(args, *p.Weight)
	}
	if p.Filename != nil {
		cols, args = append(cols, "filename"), append(args, *p.Filename)
	}
	if p.Birthdate != nil {
		cols, args = append(cols, "birthdate"), append(args, p.Birthdate.UTC())
	}
	if p.Coordinates != nil {
		cols, args = append(cols, "lat", "lng"), append(args, p.Coordinates.Lat, p.Coordinates.Lng)
	}
	if p.OwnerID != nil {
		cols, args = append(cols, "owner_id"), append(args, *p.OwnerID)
	}
	return cols, args
}
