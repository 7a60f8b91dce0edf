// Package authz holds the flat permission checks applied to every scoped
// request. Access is decided by two claim values only, the numeric
// permission level and the branch id; there are no roles beyond that and no
// policy evaluation.
package authz

import (
	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
)

// Principal is the authenticated identity extracted from token claims.
// BranchID is uuid.Nil for superadmins, who are not tied to a branch.
type Principal struct {
	UserID   uuid.UUID
	BranchID uuid.UUID
	Email    string
	Level    domain.PermissionLevel
}

// IsSuperadmin reports whether the principal operates across branches.
func (p Principal) IsSuperadmin() bool {
	return p.Level >= domain.LevelSuperadmin
}

// memberOf reports branch membership. A principal without a branch claim is
// a member of nothing.
func (p Principal) memberOf(branchID uuid.UUID) bool {
	return p.BranchID != uuid.Nil && p.BranchID == branchID
}

// CanReadBranchDoc reports whether the principal may read a document scoped
// to the given branch. Superadmins read any branch; branch admins and
// inspectors only their own.
func CanReadBranchDoc(p Principal, branchID uuid.UUID) bool {
	if p.IsSuperadmin() {
		return true
	}
	return p.memberOf(branchID)
}

// CanWriteBranchDoc reports whether the principal may create or update a
// document in the given branch. Membership grants write; inspectors and
// branch admins share the same write surface.
func CanWriteBranchDoc(p Principal, branchID uuid.UUID) bool {
	return CanReadBranchDoc(p, branchID)
}

// CanArchiveBranchDoc reports whether the principal may archive or delete a
// document in the given branch. Requires branch admin of that branch, or
// superadmin.
func CanArchiveBranchDoc(p Principal, branchID uuid.UUID) bool {
	if p.IsSuperadmin() {
		return true
	}
	return p.Level >= domain.LevelBranchAdmin && p.memberOf(branchID)
}

// CanManageBranches reports whether the principal may create, update or
// deactivate branches.
func CanManageBranches(p Principal) bool {
	return p.IsSuperadmin()
}

// CanManageUser reports whether the principal may create or modify a user
// with the given branch and level. Branch admins manage inspectors in their
// own branch only; they can never grant a level at or above their own.
func CanManageUser(p Principal, targetBranch uuid.UUID, targetLevel domain.PermissionLevel) bool {
	if p.IsSuperadmin() {
		return true
	}
	if p.Level != domain.LevelBranchAdmin {
		return false
	}
	return p.memberOf(targetBranch) && targetLevel < p.Level
}

// CanExportBranch reports whether the principal may pull register exports
// for the given branch.
func CanExportBranch(p Principal, branchID uuid.UUID) bool {
	if p.IsSuperadmin() {
		return true
	}
	return p.Level >= domain.LevelBranchAdmin && p.memberOf(branchID)
}

// CanReadAudit reports whether the principal may list audit entries for the
// given branch.
func CanReadAudit(p Principal, branchID uuid.UUID) bool {
	return CanExportBranch(p, branchID)
}

// ResolveBranch returns the branch a scoped listing should run against.
// Superadmins must name a branch explicitly through the override; everyone
// else is pinned to their own branch, and an override that names a foreign
// branch is rejected rather than silently ignored.
func ResolveBranch(p Principal, override uuid.UUID) (uuid.UUID, error) {
	if p.IsSuperadmin() {
		if override == uuid.Nil {
			return uuid.Nil, domain.ErrBranchRequired
		}
		return override, nil
	}
	if p.BranchID == uuid.Nil {
		return uuid.Nil, domain.ErrForbidden
	}
	if override != uuid.Nil && override != p.BranchID {
		return uuid.Nil, domain.ErrForbidden
	}
	return p.BranchID, nil
}
