// Package authz is the policy core: it resolves the calling principal and
// decides, per resource kind and action, what the caller may do and which
// field projection applies. It performs no IO beyond principal lookup and
// returns plain values; handlers translate decisions into HTTP responses.
package authz

import "context"

// Role values assignable to user accounts.
const (
	RoleHomeowner    = "HOMEOWNER"
	RoleProfessional = "PROFESSIONAL"
	RoleAdmin        = "ADMIN"
)

// DefaultRole is assigned when registration omits a role or asks for ADMIN.
const DefaultRole = RoleHomeowner

// Principal describes the resolved caller identity.
type Principal struct {
	UserID  int64
	Role    string
	IsStaff bool
}

// Anonymous returns the unauthenticated principal.
func Anonymous() Principal {
	return Principal{}
}

// IsAuthenticated reports whether the principal maps to a user account.
func (p Principal) IsAuthenticated() bool {
	return p.UserID != 0
}

// SanitizeRole maps a requested registration role onto an assignable one.
// Self-registration as ADMIN is silently downgraded rather than rejected.
func SanitizeRole(requested string) string {
	switch requested {
	case RoleProfessional:
		return RoleProfessional
	case "", RoleHomeowner, RoleAdmin:
		return DefaultRole
	default:
		return DefaultRole
	}
}

// Kind identifies a category of persisted record.
type Kind string

// Resource kinds known to the policy table.
const (
	KindServiceOrder Kind = "service_order"
	KindBooking      Kind = "booking"
	KindInvoice      Kind = "invoice"
	KindPortfolio    Kind = "portfolio_item"
	KindBlogPost     Kind = "blog_post"
	KindReview       Kind = "review"
	KindChatSession  Kind = "chat_session"
	KindChatMessage  Kind = "chat_message"
	KindUserActivity Kind = "user_activity"
	KindLoyalty      Kind = "loyalty_account"
	KindSiteSettings Kind = "site_settings"
	KindUserProfile  Kind = "user_profile"
)

// Action identifies an operation against a resource kind.
type Action string

// Standard and custom actions.
const (
	ActionList          Action = "list"
	ActionCreate        Action = "create"
	ActionRetrieve      Action = "retrieve"
	ActionUpdate        Action = "update"
	ActionPartialUpdate Action = "partial_update"
	ActionDestroy       Action = "destroy"

	ActionUpdateStatus Action = "update_status"
	ActionAddMessage   Action = "add_message"
	ActionFeatured     Action = "featured"
	ActionGeneratePDF  Action = "generate_pdf"
)

// ResourceRef carries the ownership facts the predicate needs about a
// concrete row. OwnerID is zero for ownerless rows (guest orders).
// For transitively owned kinds (invoices, chat messages) OwnerID is the
// owner of the linked parent.
type ResourceRef struct {
	OwnerID int64
}

type principalContextKey struct{}

// ContextWithPrincipal stores the resolved principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal; absent means anonymous.
func PrincipalFromContext(ctx context.Context) Principal {
	p, _ := ctx.Value(principalContextKey{}).(Principal)
	return p
}
