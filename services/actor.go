package services

import "github.com/kendall-kelly/campus-requests-api/models"

// Actor is an authenticated identity, resolved once per call and passed explicitly
type Actor struct {
	ID   uint
	Role string
}

// Capability names an action guarded by role
type Capability string

const (
	CapabilityManageOwnRequests Capability = "requests:own"
	CapabilityReviewRequests    Capability = "requests:review"
	CapabilityManageCatalog     Capability = "catalog:manage"
	CapabilityManageUsers       Capability = "users:manage"
	CapabilityViewDashboard     Capability = "dashboard:view"
)

var roleCapabilities = map[string][]Capability{
	models.RoleStudent:  {CapabilityManageOwnRequests},
	models.RoleGraduate: {CapabilityManageOwnRequests},
	models.RoleAdmin: {
		CapabilityReviewRequests,
		CapabilityManageCatalog,
		CapabilityManageUsers,
		CapabilityViewDashboard,
	},
}

// Can reports whether the actor's role grants the capability
func (a Actor) Can(capability Capability) bool {
	for _, c := range roleCapabilities[a.Role] {
		if c == capability {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the actor is an administrator
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Authorize returns a Forbidden error when the actor lacks the capability
func Authorize(actor Actor, capability Capability) error {
	if actor.Can(capability) {
		return nil
	}
	return NewForbiddenError(CodeForbidden, "You do not have permission to perform this action")
}
