package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemFieldsNeverWritable(t *testing.T) {
	kinds := []Kind{
		KindServiceOrder, KindBooking, KindInvoice, KindPortfolio,
		KindBlogPost, KindReview, KindChatSession, KindChatMessage,
		KindUserActivity, KindLoyalty, KindSiteSettings, KindUserProfile,
	}
	principals := []Principal{staff, owner, guest}
	for _, kind := range kinds {
		for _, p := range principals {
			spec := SelectView(p, kind, ActionUpdate)
			for _, field := range []string{"id", "created_at", "updated_at", "user_id", "author_id", "created_by", "view_count", "is_verified"} {
				assert.False(t, spec.Writable(field), "%s should be locked on %s", field, kind)
			}
		}
	}
}

func TestOrderProjectionsByRole(t *testing.T) {
	restricted := SelectView(owner, KindServiceOrder, ActionRetrieve)
	assert.NotContains(t, restricted.Fields, "admin_notes")
	assert.Contains(t, restricted.Fields, "status")
	assert.Contains(t, restricted.Fields, "estimated_cost")
	assert.False(t, restricted.Writable("status"))
	assert.False(t, restricted.Writable("estimated_cost"))
	assert.True(t, restricted.Writable("description"))

	admin := SelectView(staff, KindServiceOrder, ActionRetrieve)
	assert.Contains(t, admin.Fields, "admin_notes")
	assert.True(t, admin.Writable("status"))
	assert.True(t, admin.Writable("estimated_cost"))
}

func TestMaskReportsDroppedKeys(t *testing.T) {
	spec := SelectView(owner, KindServiceOrder, ActionCreate)
	payload := map[string]any{
		"service_title":  "Kitchen remodel",
		"full_name":      "Ali",
		"phone":          "0912xxxxxxx",
		"status":         "COMPLETED",
		"estimated_cost": "999999",
		"user_id":        int64(42),
	}
	dropped := spec.Mask(payload)

	assert.ElementsMatch(t, []string{"status", "estimated_cost", "user_id"}, dropped)
	assert.Equal(t, map[string]any{
		"service_title": "Kitchen remodel",
		"full_name":     "Ali",
		"phone":         "0912xxxxxxx",
	}, payload)
}

func TestBookingAdminNotesHiddenFromOwner(t *testing.T) {
	spec := SelectView(owner, KindBooking, ActionRetrieve)
	assert.NotContains(t, spec.Fields, "admin_notes")
	assert.False(t, spec.Writable("status"))

	admin := SelectView(staff, KindBooking, ActionRetrieve)
	assert.Contains(t, admin.Fields, "admin_notes")
}

func TestLoyaltyEntirelyReadOnly(t *testing.T) {
	spec := SelectView(owner, KindLoyalty, ActionPartialUpdate)
	for _, f := range spec.Fields {
		assert.False(t, spec.Writable(f), "loyalty field %s must be read-only", f)
	}
}

func TestSettingsWritableForStaffOnly(t *testing.T) {
	public := SelectView(owner, KindSiteSettings, ActionPartialUpdate)
	assert.False(t, public.Writable("hero_title"))

	admin := SelectView(staff, KindSiteSettings, ActionPartialUpdate)
	assert.True(t, admin.Writable("hero_title"))
	assert.True(t, admin.Writable("ai_enabled"))
	assert.False(t, admin.Writable("updated_at"))
}

func TestSanitizeRole(t *testing.T) {
	assert.Equal(t, RoleHomeowner, SanitizeRole(RoleAdmin))
	assert.Equal(t, RoleHomeowner, SanitizeRole(""))
	assert.Equal(t, RoleHomeowner, SanitizeRole("SUPERUSER"))
	assert.Equal(t, RoleProfessional, SanitizeRole(RoleProfessional))
	assert.Equal(t, RoleHomeowner, SanitizeRole(RoleHomeowner))

	// Repeated attempts stay downgraded.
	assert.Equal(t, RoleHomeowner, SanitizeRole(SanitizeRole(RoleAdmin)))
}
