package sitesettings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hermes-renovation/hermes/internal/platform/db"
	"github.com/hermes-renovation/hermes/internal/shared"
)

// Repository defines persistence operations for the settings singleton.
type Repository interface {
	GetOrCreate(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, settings *Settings) (*Settings, error)
}

// PGRepository provides PostgreSQL backed persistence. The table carries
// a constant singleton key with a unique constraint, so concurrent
// first reads cannot produce two rows.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const settingsColumns = `id, COALESCE(instagram_url, ''), COALESCE(telegram_url, ''), COALESCE(whatsapp_url, ''),
	phone_number, COALESCE(address, ''), COALESCE(email, ''),
	ai_enabled, bookings_enabled, hero_title, COALESCE(hero_subtitle, ''), COALESCE(enamad_url, ''), updated_at`

func scanSettings(row pgx.Row) (*Settings, error) {
	var s Settings
	err := row.Scan(&s.ID, &s.InstagramURL, &s.TelegramURL, &s.WhatsappURL,
		&s.PhoneNumber, &s.Address, &s.Email,
		&s.AIEnabled, &s.BookingsEnabled, &s.HeroTitle, &s.HeroSubtitle, &s.EnamadURL, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) get(ctx context.Context) (*Settings, error) {
	return scanSettings(r.pool.QueryRow(ctx,
		`SELECT `+settingsColumns+` FROM site_settings WHERE singleton = TRUE`))
}

// GetOrCreate returns the settings row, inserting defaults on first use.
func (r *PGRepository) GetOrCreate(ctx context.Context) (*Settings, error) {
	settings, err := r.get(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	settings, err = scanSettings(r.pool.QueryRow(ctx,
		`INSERT INTO site_settings (singleton) VALUES (TRUE)
		 RETURNING `+settingsColumns))
	if err == nil {
		return settings, nil
	}
	if db.IsUniqueViolation(err) {
		return r.get(ctx)
	}
	return nil, err
}

// Save updates the singleton in place; it never inserts a second row.
func (r *PGRepository) Save(ctx context.Context, settings *Settings) (*Settings, error) {
	_, err := r.pool.Exec(ctx,
		`UPDATE site_settings SET
		    instagram_url = NULLIF($1, ''), telegram_url = NULLIF($2, ''), whatsapp_url = NULLIF($3, ''),
		    phone_number = $4, address = NULLIF($5, ''), email = NULLIF($6, ''),
		    ai_enabled = $7, bookings_enabled = $8,
		    hero_title = $9, hero_subtitle = NULLIF($10, ''), enamad_url = NULLIF($11, ''),
		    updated_at = NOW()
		 WHERE singleton = TRUE`,
		settings.InstagramURL, settings.TelegramURL, settings.WhatsappURL,
		settings.PhoneNumber, settings.Address, settings.Email,
		settings.AIEnabled, settings.BookingsEnabled,
		settings.HeroTitle, settings.HeroSubtitle, settings.EnamadURL)
	if err != nil {
		return nil, err
	}
	return r.get(ctx)
}
