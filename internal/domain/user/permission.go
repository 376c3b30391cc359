package user

import "errors"

// Role of a user inside an organization.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// CanApprove reports whether the role may act on approval requests.
func (r Role) CanApprove() bool {
	return r == RoleOwner || r == RoleManager
}

var (
	ErrManagerAccessRequired = errors.New("manager access required")
	ErrOwnerAccessRequired   = errors.New("owner access required")
)
