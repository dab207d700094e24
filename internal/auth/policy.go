package auth

import (
	"backend/pkg/apperror"

	"github.com/google/uuid"
)

// The tenancy policy is one decision shape shared by products, categories,
// orders and prompts: admins bypass the check, everyone else must act within
// their own organization.

// Scope describes how a list operation is narrowed for an identity.
type Scope struct {
	// All is true for admins: no organization filter.
	All bool
	// OrganizationID filters the list when All is false and the identity
	// has a tenant.
	OrganizationID *uuid.UUID
}

// Empty reports whether the scope matches nothing: a non-admin with no
// organization lists an empty result rather than an error.
func (s Scope) Empty() bool {
	return !s.All && s.OrganizationID == nil
}

// CanAccess decides read/update/delete on a resource owned by resourceOrg.
func CanAccess(id Identity, resourceOrg uuid.UUID) error {
	if id.IsAdmin {
		return nil
	}
	if id.OrganizationID == nil || *id.OrganizationID != resourceOrg {
		return apperror.New(apperror.KindForbidden, "access denied")
	}
	return nil
}

// ResolveCreateOrg decides which organization a new resource is attached to.
// Admins must name a target organization explicitly (the calling service
// still validates it exists). Non-admins are forced to their own
// organization, ignoring any caller-supplied id, which prevents cross-tenant
// injection; without an organization they cannot create at all.
func ResolveCreateOrg(id Identity, requested *uuid.UUID) (uuid.UUID, error) {
	if id.IsAdmin {
		if requested == nil {
			return uuid.Nil, apperror.New(apperror.KindValidation, "organization_id is required")
		}
		return *requested, nil
	}
	if id.OrganizationID == nil {
		return uuid.Nil, apperror.New(apperror.KindForbidden, "you must belong to an organization to create this resource")
	}
	return *id.OrganizationID, nil
}

// ListScope narrows list operations for an identity.
func ListScope(id Identity) Scope {
	if id.IsAdmin {
		return Scope{All: true}
	}
	return Scope{OrganizationID: id.OrganizationID}
}
