package domain

// Principal is the identity attached to a single request. The zero value is
// the anonymous principal.
type Principal struct {
	ID   string
	Role string
	// Token is the raw bearer token the principal was resolved from.
	Token string
}

// Anonymous reports whether no credential was presented.
func (p Principal) Anonymous() bool {
	return p.ID == ""
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return !p.Anonymous() && p.Role == RoleAdmin
}
