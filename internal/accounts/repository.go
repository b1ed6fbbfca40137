package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hermes-renovation/hermes/internal/auth"
	"github.com/hermes-renovation/hermes/internal/platform/db"
	"github.com/hermes-renovation/hermes/internal/shared"
)

// Repository defines persistence operations for accounts.
type Repository interface {
	GetOrCreateProfile(ctx context.Context, userID int64) (*Profile, error)
	UpdateProfile(ctx context.Context, userID int64, patch ProfilePatch) (*Profile, error)
	RecordActivity(ctx context.Context, a Activity) error
	ListActivities(ctx context.Context, userID int64, limit, offset int) ([]Activity, int, error)
	ListUsers(ctx context.Context, filter ListUsersFilter) ([]auth.User, int, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const profileColumns = `id, user_id, bio, address, national_code, company_name, license_number, specialties, email_notifications, sms_notifications, created_at, updated_at`

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	var bio, address, national, company, license *string
	var specialties []byte
	err := row.Scan(&p.ID, &p.UserID, &bio, &address, &national, &company, &license, &specialties, &p.EmailNotifications, &p.SMSNotifications, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if bio != nil {
		p.Bio = *bio
	}
	if address != nil {
		p.Address = *address
	}
	if national != nil {
		p.NationalCode = *national
	}
	if company != nil {
		p.CompanyName = *company
	}
	if license != nil {
		p.LicenseNumber = *license
	}
	p.Specialties = []string{}
	if len(specialties) > 0 {
		_ = json.Unmarshal(specialties, &p.Specialties)
	}
	return &p, nil
}

// GetOrCreateProfile returns the user's profile, creating it on first
// access. The unique constraint on user_id arbitrates concurrent first
// accesses; the loser re-reads the winner's row.
func (r *PGRepository) GetOrCreateProfile(ctx context.Context, userID int64) (*Profile, error) {
	profile, err := r.getProfile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO user_profiles (user_id) VALUES ($1) RETURNING `+profileColumns, userID)
	profile, err = scanProfile(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return r.getProfile(ctx, userID)
		}
		return nil, err
	}
	return profile, nil
}

func (r *PGRepository) getProfile(ctx context.Context, userID int64) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE user_id = $1`, userID)
	return scanProfile(row)
}

// ProfilePatch carries the writable profile fields; nil means unchanged.
type ProfilePatch struct {
	Bio                *string
	Address            *string
	NationalCode       *string
	CompanyName        *string
	LicenseNumber      *string
	Specialties        *[]string
	EmailNotifications *bool
	SMSNotifications   *bool
}

// UpdateProfile applies the patch and returns the updated row.
func (r *PGRepository) UpdateProfile(ctx context.Context, userID int64, patch ProfilePatch) (*Profile, error) {
	if _, err := r.GetOrCreateProfile(ctx, userID); err != nil {
		return nil, err
	}
	var specialties any
	if patch.Specialties != nil {
		data, err := json.Marshal(*patch.Specialties)
		if err != nil {
			return nil, err
		}
		specialties = data
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE user_profiles SET
		    bio = COALESCE($2, bio),
		    address = COALESCE($3, address),
		    national_code = COALESCE($4, national_code),
		    company_name = COALESCE($5, company_name),
		    license_number = COALESCE($6, license_number),
		    specialties = COALESCE($7, specialties),
		    email_notifications = COALESCE($8, email_notifications),
		    sms_notifications = COALESCE($9, sms_notifications),
		    updated_at = NOW()
		 WHERE user_id = $1
		 RETURNING `+profileColumns,
		userID, patch.Bio, patch.Address, patch.NationalCode, patch.CompanyName,
		patch.LicenseNumber, specialties, patch.EmailNotifications, patch.SMSNotifications)
	return scanProfile(row)
}

// RecordActivity appends an activity log entry.
func (r *PGRepository) RecordActivity(ctx context.Context, a Activity) error {
	at := a.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_activities (user_id, action, details, ip_address, created_at) VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)`,
		a.UserID, a.Action, a.Details, a.IPAddress, at)
	return err
}

// ListActivities returns the user's activity log, newest first.
func (r *PGRepository) ListActivities(ctx context.Context, userID int64, limit, offset int) ([]Activity, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_activities WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, action, COALESCE(details, ''), COALESCE(ip_address::text, ''), created_at
		 FROM user_activities WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.Details, &a.IPAddress, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

// ListUsers returns accounts matching the filter, for staff listings.
func (r *PGRepository) ListUsers(ctx context.Context, filter ListUsersFilter) ([]auth.User, int, error) {
	where := ` WHERE ($1 = '' OR role = $1)
	             AND ($2 = '' OR full_name ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%' OR phone ILIKE '%' || $2 || '%')`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, filter.Role, filter.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := shared.Offset(filter.Page, limit)

	rows, err := r.pool.Query(ctx,
		`SELECT id, email, full_name, COALESCE(phone, ''), role, is_staff, is_active, last_login_at, created_at, updated_at
		 FROM users`+where+` ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		filter.Role, filter.Search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []auth.User
	for rows.Next() {
		var u auth.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Phone, &u.Role, &u.IsStaff, &u.IsActive, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}
