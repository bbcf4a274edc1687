package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/deatransindo/absensi/internal/db"
	"github.com/deatransindo/absensi/internal/domain"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	DB *db.Postgres
}

type CreateUserParams struct {
	Name         string
	Email        string
	Phone        string
	Role         domain.UserRole
	PasswordHash string
}

type UpdateUserParams struct {
	Name         *string
	Email        *string
	Phone        *string
	PasswordHash *string
	IsActive     *bool
}

// UserWithCounts augments a user with the sizes of its owned collections,
// used by the admin user listing.
type UserWithCounts struct {
	domain.User
	AttendanceCount int64
	VisitCount      int64
}

func (r UserRepository) Create(ctx context.Context, p CreateUserParams) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO users (name, email, phone, role, password_hash, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5, true, now(), now())
		RETURNING id, name, email, phone, role, password_hash, is_active, created_at, updated_at
	`, p.Name, strings.ToLower(p.Email), p.Phone, p.Role, p.PasswordHash)
	return scanUser(row)
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, name, email, phone, role, password_hash, is_active, created_at, updated_at
		FROM users
		WHERE lower(email) = lower($1)
	`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, name, email, phone, role, password_hash, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// ListActiveByRole returns active accounts with the given role, ordered by name.
func (r UserRepository) ListActiveByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, name, email, phone, role, password_hash, is_active, created_at, updated_at
		FROM users
		WHERE role = $1 AND is_active
		ORDER BY name ASC
	`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	return items, rows.Err()
}

// ListWithCounts returns accounts with the given role plus their attendance
// and visit record counts, ordered by name.
func (r UserRepository) ListWithCounts(ctx context.Context, role domain.UserRole) ([]UserWithCounts, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT u.id, u.name, u.email, u.phone, u.role, u.password_hash, u.is_active, u.created_at, u.updated_at,
		       (SELECT COUNT(*) FROM attendance a WHERE a.user_id = u.id) AS attendance_count,
		       (SELECT COUNT(*) FROM visits v WHERE v.user_id = u.id) AS visit_count
		FROM users u
		WHERE u.role = $1
		ORDER BY u.name ASC
	`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []UserWithCounts
	for rows.Next() {
		var (
			uc   UserWithCounts
			role string
		)
		if err := rows.Scan(
			&uc.ID, &uc.Name, &uc.Email, &uc.Phone, &role, &uc.PasswordHash,
			&uc.IsActive, &uc.CreatedAt, &uc.UpdatedAt,
			&uc.AttendanceCount, &uc.VisitCount,
		); err != nil {
			return nil, err
		}
		uc.Role = domain.UserRole(role)
		items = append(items, uc)
	}
	return items, rows.Err()
}

func (r UserRepository) Update(ctx context.Context, id int64, p UpdateUserParams) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE users SET
			name          = COALESCE($2, name),
			email         = COALESCE(lower($3), email),
			phone         = COALESCE($4, phone),
			password_hash = COALESCE($5, password_hash),
			is_active     = COALESCE($6, is_active),
			updated_at    = now()
		WHERE id = $1
		RETURNING id, name, email, phone, role, password_hash, is_active, created_at, updated_at
	`, id, p.Name, p.Email, p.Phone, p.PasswordHash, p.IsActive)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// Delete removes the account permanently. Owned attendance, visit and
// subscription rows go with it via ON DELETE CASCADE.
func (r UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Phone,
		&role,
		&u.PasswordHash,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Role = domain.UserRole(role)
	return &u, nil
}
