package loyalty

import "time"

// Tier names ordered from entry level up.
const (
	TierBronze = "BRONZE"
	TierSilver = "SILVER"
	TierGold   = "GOLD"
)

// Account tracks loyalty points per user. One row per user; the API
// never mutates it directly.
type Account struct {
	ID           int64
	UserID       int64
	TotalPoints  int64
	CurrentTier  string
	ReferralCode string
	ReferredBy   *int64
	UpdatedAt    time.Time
}

// Fields renders the account as a flat record for view projection.
func (a *Account) Fields() map[string]any {
	return map[string]any{
		"id":            a.ID,
		"total_points":  a.TotalPoints,
		"current_tier":  a.CurrentTier,
		"referral_code": a.ReferralCode,
		"updated_at":    a.UpdatedAt,
	}
}
