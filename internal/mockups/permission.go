package mockups

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nadia/mockdeck/internal/database/models"
)

// Permission is the effective access tier a requester holds over a mockup.
// It is computed fresh on every request and never cached or persisted.
type Permission string

const (
	PermissionOwner Permission = "owner"
	PermissionEdit  Permission = "edit"
	PermissionView  Permission = "view"
	PermissionNone  Permission = "none"
)

var permissionRank = map[Permission]int{
	PermissionNone:  0,
	PermissionView:  1,
	PermissionEdit:  2,
	PermissionOwner: 3,
}

// CanView reports whether the tier allows reading the mockup.
func (p Permission) CanView() bool {
	return permissionRank[p] >= permissionRank[PermissionView]
}

// CanEdit reports whether the tier allows mutating writable fields.
func (p Permission) CanEdit() bool {
	return permissionRank[p] >= permissionRank[PermissionEdit]
}

func maxPermission(a, b Permission) Permission {
	if permissionRank[b] > permissionRank[a] {
		return b
	}
	return a
}

// Requester identifies who is asking. A nil *Requester is an anonymous
// request: it can only ever reach view through a public mockup and never
// matches a share.
type Requester struct {
	ID    uuid.UUID
	Email string
}

// ResolvePermission computes the single effective permission for a
// requester over a mockup, given the mockup's shares.
//
// Owner identity is absolute. Public visibility is a floor, not exclusive
// with shares: a public mockup still lets a matching edit share win. When
// several shares match, the most permissive one wins. Shares past their
// expiry are skipped, not errors.
func ResolvePermission(m *models.Mockup, r *Requester, shares []models.MockupShare, now time.Time) Permission {
	if r != nil && r.ID == m.OwnerID {
		return PermissionOwner
	}

	result := PermissionNone
	if m.IsPublic {
		result = PermissionView
	}

	if r == nil {
		return result
	}

	email := strings.ToLower(r.Email)
	for i := range shares {
		s := &shares[i]
		if s.MockupID != m.ID || s.Expired(now) {
			continue
		}

		matched := (s.SharedWithUserID != nil && *s.SharedWithUserID == r.ID) ||
			(s.SharedWithEmail != "" && strings.ToLower(s.SharedWithEmail) == email)
		if !matched {
			continue
		}

		switch s.Permission {
		case models.SharePermissionEdit:
			result = maxPermission(result, PermissionEdit)
		case models.SharePermissionView:
			result = maxPermission(result, PermissionView)
		}
	}

	return result
}

// IsLiteralOwner is the stricter predicate used by delete and every
// version operation. It checks identity, not tier: share-granted edit
// never satisfies it.
func IsLiteralOwner(m *models.Mockup, r *Requester) bool {
	return r != nil && r.ID == m.OwnerID
}
