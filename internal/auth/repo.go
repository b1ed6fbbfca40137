package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hermes-renovation/hermes/internal/authz"
	"github.com/hermes-renovation/hermes/internal/platform/db"
	"github.com/hermes-renovation/hermes/internal/platform/httpx"
	"github.com/hermes-renovation/hermes/internal/shared"
)

// Repository defines persistence operations needed by the auth service.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	UpdateProfileFields(ctx context.Context, id int64, fullName, phone, avatarURL string) (*User, error)
	RecordLogin(ctx context.Context, id int64, ip string, at time.Time) error
	FindPrincipal(ctx context.Context, userID int64) (authz.Principal, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, email, full_name, phone, role, is_staff, password_hash, avatar_url, is_active, last_login_ip, last_login_at, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var phone, avatar, ip *string
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &phone, &u.Role, &u.IsStaff, &u.PasswordHash, &avatar, &u.IsActive, &ip, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if phone != nil {
		u.Phone = *phone
	}
	if avatar != nil {
		u.AvatarURL = *avatar
	}
	if ip != nil {
		u.LastLoginIP = *ip
	}
	return &u, nil
}

// FindByEmail loads a user by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindByID loads a user by primary key.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// Create inserts the user together with an empty profile row.
func (r *PGRepository) Create(ctx context.Context, user *User) (*User, error) {
	var created *User
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`INSERT INTO users (email, full_name, phone, role, is_staff, password_hash, is_active)
			 VALUES ($1, $2, NULLIF($3, ''), $4, FALSE, $5, TRUE)
			 RETURNING `+userColumns,
			user.Email, user.FullName, user.Phone, user.Role, user.PasswordHash)
		u, err := scanUser(row)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO user_profiles (user_id) VALUES ($1)`, u.ID); err != nil {
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return created, nil
}

// UpdateProfileFields patches the caller-editable account fields.
func (r *PGRepository) UpdateProfileFields(ctx context.Context, id int64, fullName, phone, avatarURL string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE users
		 SET full_name = COALESCE(NULLIF($2, ''), full_name),
		     phone = COALESCE(NULLIF($3, ''), phone),
		     avatar_url = COALESCE(NULLIF($4, ''), avatar_url),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, fullName, phone, avatarURL)
	return scanUser(row)
}

// RecordLogin stores last login metadata.
func (r *PGRepository) RecordLogin(ctx context.Context, id int64, ip string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login_ip = $2, last_login_at = $3 WHERE id = $1`, id, ip, at)
	return err
}

// FindPrincipal implements authz.UserSource.
func (r *PGRepository) FindPrincipal(ctx context.Context, userID int64) (authz.Principal, error) {
	var p authz.Principal
	var active bool
	err := r.pool.QueryRow(ctx, `SELECT id, role, is_staff, is_active FROM users WHERE id = $1`, userID).
		Scan(&p.UserID, &p.Role, &p.IsStaff, &active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authz.Principal{}, shared.ErrNotFound
		}
		return authz.Principal{}, err
	}
	if !active {
		return authz.Principal{}, shared.ErrNotFound
	}
	return p, nil
}
