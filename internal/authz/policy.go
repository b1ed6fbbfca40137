package authz

import (
	"github.com/hermes-renovation/hermes/internal/platform/httpx"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	// DecisionAllow permits the action.
	DecisionAllow Decision = iota
	// DecisionEmpty applies to list actions: the caller gets an empty
	// collection instead of an error, so row existence never leaks.
	DecisionEmpty
	// DecisionNotFound hides the row from a caller who does not own it.
	DecisionNotFound
	// DecisionForbidden rejects a valid principal with insufficient rights.
	DecisionForbidden
	// DecisionUnauthorized rejects an anonymous caller where identity is required.
	DecisionUnauthorized
)

// Allowed reports whether the action may proceed.
func (d Decision) Allowed() bool {
	return d == DecisionAllow
}

// Err maps the decision onto the platform error taxonomy. Allow and Empty
// map to nil; Empty callers are expected to short-circuit with zero rows.
func (d Decision) Err() error {
	switch d {
	case DecisionAllow, DecisionEmpty:
		return nil
	case DecisionNotFound:
		return httpx.ErrNotFound
	case DecisionUnauthorized:
		return httpx.ErrUnauthorized
	default:
		return httpx.ErrForbidden
	}
}

// ruleKind describes how a resource kind is scoped.
type ruleKind struct {
	// publicRead allows list/retrieve without a principal.
	publicRead bool
	// anonymousCreate allows create without a principal (guest checkout).
	anonymousCreate bool
	// ownerScoped restricts rows to their owner for non-staff callers.
	ownerScoped bool
	// staffWrite restricts create/update/destroy to staff.
	staffWrite bool
	// staffActions lists custom actions reserved to staff.
	staffActions map[Action]bool
}

var rules = map[Kind]ruleKind{
	KindServiceOrder: {
		anonymousCreate: true,
		ownerScoped:     true,
		staffActions:    map[Action]bool{ActionUpdateStatus: true},
	},
	KindBooking: {
		ownerScoped: true,
	},
	KindInvoice: {
		ownerScoped:  true,
		staffWrite:   true,
		staffActions: map[Action]bool{ActionUpdateStatus: true},
	},
	KindPortfolio: {
		publicRead:   true,
		staffActions: map[Action]bool{},
	},
	KindBlogPost: {
		publicRead: true,
	},
	KindReview: {
		publicRead:   true,
		staffActions: map[Action]bool{ActionUpdateStatus: true},
	},
	KindChatSession: {
		ownerScoped: true,
	},
	KindChatMessage: {
		ownerScoped: true,
	},
	KindUserActivity: {
		ownerScoped: true,
	},
	KindLoyalty: {
		ownerScoped: true,
	},
	KindSiteSettings: {
		publicRead: true,
		staffWrite: true,
	},
	KindUserProfile: {
		ownerScoped: true,
	},
}

// Authorize decides whether principal p may perform action on kind.
// ref carries ownership facts for object-level actions and is nil for
// collection-level ones. Precedence: staff override, per-kind rule table,
// default deny.
func Authorize(p Principal, kind Kind, action Action, ref *ResourceRef) Decision {
	if p.IsStaff {
		return DecisionAllow
	}

	rule, ok := rules[kind]
	if !ok {
		return DecisionForbidden
	}

	if rule.staffActions[action] {
		if !p.IsAuthenticated() {
			return DecisionUnauthorized
		}
		return DecisionForbidden
	}

	switch action {
	case ActionList:
		if rule.publicRead {
			return DecisionAllow
		}
		if !p.IsAuthenticated() {
			// Anonymous list of owner-scoped kinds yields an empty set.
			return DecisionEmpty
		}
		return DecisionAllow
	case ActionCreate:
		if rule.anonymousCreate {
			return DecisionAllow
		}
		if !p.IsAuthenticated() {
			return DecisionUnauthorized
		}
		if rule.staffWrite {
			return DecisionForbidden
		}
		return DecisionAllow
	case ActionRetrieve, ActionFeatured:
		if rule.publicRead {
			return DecisionAllow
		}
		return authorizeOwned(p, rule, ref)
	case ActionUpdate, ActionPartialUpdate, ActionDestroy, ActionAddMessage, ActionGeneratePDF:
		if rule.staffWrite {
			if !p.IsAuthenticated() {
				return DecisionUnauthorized
			}
			if kind == KindInvoice && (action == ActionGeneratePDF || action == ActionRetrieve) {
				return authorizeOwned(p, rule, ref)
			}
			return DecisionForbidden
		}
		if rule.ownerScoped {
			return authorizeOwned(p, rule, ref)
		}
		// Publicly readable, author-owned kinds: any authenticated
		// principal may write its own rows; owner fields are force-set
		// by the view spec, not trusted from the payload.
		if !p.IsAuthenticated() {
			return DecisionUnauthorized
		}
		if ref != nil && ref.OwnerID != 0 && ref.OwnerID != p.UserID {
			return DecisionForbidden
		}
		return DecisionAllow
	default:
		return DecisionForbidden
	}
}

// authorizeOwned applies the owner-scoped object rule: unauthenticated
// callers get Unauthorized, non-owners get NotFound so ids cannot be
// enumerated. A nil owner (guest-created row) is visible to staff only.
func authorizeOwned(p Principal, rule ruleKind, ref *ResourceRef) Decision {
	if !p.IsAuthenticated() {
		return DecisionUnauthorized
	}
	if ref == nil {
		return DecisionAllow
	}
	if ref.OwnerID == 0 || ref.OwnerID != p.UserID {
		return DecisionNotFound
	}
	return DecisionAllow
}
