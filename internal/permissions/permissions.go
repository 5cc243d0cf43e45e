// Package permissions centralises the role-based rules that guard team
// management. Every check compares role ranks through the ordered enum in
// internal/models; no caller compares role strings directly.
package permissions

import "github.com/saaskit-io/saaskit/internal/models"

// CanInvite reports whether a caller may issue an invitation granting the
// given role. Admins and owners may invite; only owners may grant OWNER.
func CanInvite(caller, granted models.Role) bool {
	if !caller.AtLeast(models.RoleAdmin) {
		return false
	}
	if granted == models.RoleOwner {
		return caller == models.RoleOwner
	}
	return granted.Valid()
}

// CanRemoveMember reports whether a caller may remove the target member.
// Admins may remove members and viewers only; owners may remove anyone.
// The last-owner rule is enforced separately by the membership service.
func CanRemoveMember(caller, target models.Role) bool {
	if !caller.AtLeast(models.RoleAdmin) {
		return false
	}
	if target.AtLeast(models.RoleAdmin) {
		return caller == models.RoleOwner
	}
	return true
}

// CanManageTenant reports whether a caller may update tenant settings or
// cancel outstanding invitations.
func CanManageTenant(caller models.Role) bool {
	return caller.AtLeast(models.RoleAdmin)
}

// CanManageBilling reports whether a caller may change the subscription plan.
func CanManageBilling(caller models.Role) bool {
	return caller == models.RoleOwner
}
