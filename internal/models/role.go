package models

// Role identifies which portal subtree a session may enter.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCompany Role = "company"
	RoleMentor  Role = "mentor"
	RoleStudent Role = "student"
)

// IsValid reports whether the role is one of the four portal roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCompany, RoleMentor, RoleStudent:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
