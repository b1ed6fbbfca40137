package authz

// ViewSpec is the field projection and mutability rules applied for a
// given principal/action pair. Fields absent from Writable are dropped
// from inbound payloads before the write is attempted; the masked keys
// are reported so callers and tests can observe exactly what was ignored.
type ViewSpec struct {
	// Fields is the response allow-list.
	Fields []string
	// ReadOnly lists fields present in responses but never writable.
	ReadOnly []string

	readOnly map[string]bool
	fields   map[string]bool
}

// systemReadOnly fields are immutable on every kind regardless of role.
var systemReadOnly = []string{
	"id", "user", "user_id", "author", "author_id", "created_by",
	"created_at", "updated_at", "view_count", "is_verified",
}

func newViewSpec(fields, readOnly []string) ViewSpec {
	ro := append([]string{}, systemReadOnly...)
	ro = append(ro, readOnly...)
	spec := ViewSpec{Fields: fields, ReadOnly: ro}
	spec.fields = make(map[string]bool, len(fields))
	for _, f := range fields {
		spec.fields[f] = true
	}
	spec.readOnly = make(map[string]bool, len(ro))
	for _, f := range ro {
		spec.readOnly[f] = true
	}
	return spec
}

// Writable reports whether the caller may set field through this view.
func (v ViewSpec) Writable(field string) bool {
	if v.readOnly[field] {
		return false
	}
	return v.fields[field]
}

// Project filters a response record down to the view's field allow-list.
func (v ViewSpec) Project(record map[string]any) map[string]any {
	out := make(map[string]any, len(record))
	for key, value := range record {
		if v.fields[key] {
			out[key] = value
		}
	}
	return out
}

// Mask removes non-writable keys from payload in place and returns the
// list of dropped keys. Write attempts on read-only fields are silently
// ignored, mirroring force-set-on-create semantics.
func (v ViewSpec) Mask(payload map[string]any) []string {
	var dropped []string
	for key := range payload {
		if !v.Writable(key) {
			delete(payload, key)
			dropped = append(dropped, key)
		}
	}
	return dropped
}

var (
	orderRestrictedView = newViewSpec(
		[]string{"id", "service_title", "full_name", "phone", "description", "status", "estimated_cost", "created_at", "updated_at"},
		[]string{"status", "estimated_cost"},
	)
	orderAdminView = newViewSpec(
		[]string{"id", "user_id", "service_title", "full_name", "phone", "description", "status", "admin_notes", "estimated_cost", "created_at", "updated_at"},
		nil,
	)
	bookingView = newViewSpec(
		[]string{"id", "date", "time_slot", "address", "description", "status", "created_at"},
		[]string{"status", "admin_notes"},
	)
	bookingAdminView = newViewSpec(
		[]string{"id", "user_id", "date", "time_slot", "address", "description", "status", "admin_notes", "created_at"},
		nil,
	)
	invoiceView = newViewSpec(
		[]string{"id", "order_id", "invoice_number", "amount", "tax_amount", "discount_amount", "final_amount", "status", "due_date", "paid_date", "created_at", "updated_at"},
		[]string{"order_id", "invoice_number", "amount", "tax_amount", "discount_amount", "final_amount", "status", "due_date", "paid_date"},
	)
	invoiceAdminView = newViewSpec(
		[]string{"id", "order_id", "invoice_number", "amount", "tax_amount", "discount_amount", "final_amount", "status", "due_date", "paid_date", "created_at", "updated_at"},
		[]string{"invoice_number"},
	)
	portfolioView = newViewSpec(
		[]string{"id", "title", "description", "cover_image", "location", "completion_date", "before_video_url", "after_video_url", "is_featured", "view_count", "gallery_images", "tags", "created_at", "updated_at"},
		nil,
	)
	blogView = newViewSpec(
		[]string{"id", "title", "slug", "content", "cover_image", "tags", "is_published", "view_count", "created_at", "updated_at"},
		nil,
	)
	reviewView = newViewSpec(
		[]string{"id", "project_id", "rating", "comment", "is_verified", "created_at"},
		nil,
	)
	chatSessionView = newViewSpec(
		[]string{"id", "title", "created_at", "updated_at"},
		nil,
	)
	chatMessageView = newViewSpec(
		[]string{"id", "role", "text", "image_url", "created_at"},
		nil,
	)
	activityView = newViewSpec(
		[]string{"id", "action", "details", "created_at"},
		[]string{"action", "details"},
	)
	loyaltyView = newViewSpec(
		[]string{"id", "total_points", "current_tier", "referral_code", "updated_at"},
		[]string{"total_points", "current_tier", "referral_code"},
	)
	settingsPublicView = newViewSpec(
		[]string{"instagram_url", "telegram_url", "whatsapp_url", "phone_number", "address", "email", "ai_enabled", "bookings_enabled", "hero_title", "hero_subtitle", "enamad_url", "updated_at"},
		[]string{"instagram_url", "telegram_url", "whatsapp_url", "phone_number", "address", "email", "ai_enabled", "bookings_enabled", "hero_title", "hero_subtitle", "enamad_url"},
	)
	settingsAdminView = newViewSpec(
		[]string{"instagram_url", "telegram_url", "whatsapp_url", "phone_number", "address", "email", "ai_enabled", "bookings_enabled", "hero_title", "hero_subtitle", "enamad_url", "updated_at"},
		nil,
	)
	profileView = newViewSpec(
		[]string{"id", "bio", "address", "national_code", "company_name", "license_number", "specialties", "email_notifications", "sms_notifications", "created_at", "updated_at"},
		nil,
	)
)

// SelectView chooses the field projection for a principal/kind/action
// triple. Staff get the admin projection where one exists; everyone else
// gets the restricted view with status and cost fields locked.
func SelectView(p Principal, kind Kind, action Action) ViewSpec {
	switch kind {
	case KindServiceOrder:
		if p.IsStaff {
			return orderAdminView
		}
		return orderRestrictedView
	case KindBooking:
		if p.IsStaff {
			return bookingAdminView
		}
		return bookingView
	case KindInvoice:
		if p.IsStaff {
			return invoiceAdminView
		}
		return invoiceView
	case KindPortfolio:
		return portfolioView
	case KindBlogPost:
		return blogView
	case KindReview:
		return reviewView
	case KindChatSession:
		return chatSessionView
	case KindChatMessage:
		return chatMessageView
	case KindUserActivity:
		return activityView
	case KindLoyalty:
		return loyaltyView
	case KindSiteSettings:
		if p.IsStaff {
			return settingsAdminView
		}
		return settingsPublicView
	case KindUserProfile:
		return profileView
	default:
		return newViewSpec(nil, nil)
	}
}
