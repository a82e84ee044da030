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

const userColumns = `id, user_name, email, password, role, created_at, updated_at`

// UserRepository implements ports.UserRepository on sqlx.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository { return &UserRepository{db: db} }

type userRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"user_name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`); err != nil {
		return nil, domain.StoreError("list users", err)
	}
	users := make([]*domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}
	return users, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, id, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// FindByLogin matches the email or the user name.
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	return r.get(ctx, login, `SELECT `+userColumns+` FROM users WHERE email = ? OR user_name = ?`, login, login)
}

func (r *UserRepository) get(ctx context.Context, key, q string, args ...any) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var row userRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(q), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("user %s", key)
		}
		return nil, domain.StoreError("find user", err)
	}
	return row.toDomain(), nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := userRow{
		ID:           uuid.NewString(),
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		CreatedAt:    user.CreatedAt.UTC(),
		UpdatedAt:    user.UpdatedAt.UTC(),
	}
	const q = `INSERT INTO users (` + userColumns + `)
	  VALUES (:id, :user_name, :email, :password, :role, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, row); err != nil {
		return nil, translate("insert user", err)
	}
	return row.toDomain(), nil
}

// MergeUpdate sets only the fields present in patch.
func (r *UserRepository) MergeUpdate(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	cols, args := userAssignments(patch)
	if len(cols) == 0 {
		return r.FindByID(ctx, id)
	}
	cols = append(cols, "updated_at")
	args = append(args, time.Now().UTC(), id)

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := `UPDATE users SET ` + setClause(cols) + ` WHERE id = ? RETURNING ` + userColumns
	var row userRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(q), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("user %s", id)
		}
		return nil, translate("update user", err)
	}
	return row.toDomain(), nil
}

// Delete removes the user; owned cats go with it through the foreign key.
func (r *UserRepository) Delete(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var row userRow
	q := r.db.Rebind(`DELETE FROM users WHERE id = ? RETURNING ` + userColumns)
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("user %s", id)
		}
		return nil, domain.StoreError("delete user", err)
	}
	return row.toDomain(), nil
}

func userAssignments(p domain.UserPatch) ([]string, []any) {
	var (
		cols []string
		args []any
	)
	if p.Name != nil {
		cols, args = append(cols, "user_name"), append(args, *p.Name)
	}
	if p.Email != nil {
		cols, args = append(cols, "email"), append(args, *p.Email)
	}
	if p.PasswordHash != nil {
		cols, args = append(cols, "password"), append(args, *p.PasswordHash)
	}
	if p.Role != nil {
		cols, args = append(cols, "role"), append(args, *p.Role)
	}
	return cols, args
}
