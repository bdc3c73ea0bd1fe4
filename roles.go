package auth

import "strings"

// Role is the closed set of account roles.
type Role string

const (
	// RoleUser is a regular account
	RoleUser Role = "USER"
	// RoleAdmin can manage accounts
	RoleAdmin Role = "ADMIN"
)

const (
	AuthorityUser  = "ROLE_USER"
	AuthorityAdmin = "ROLE_ADMIN"
)

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// Authority maps the role to its authority label. The mapping is total over
// the valid roles; an invalid role yields "".
func (r Role) Authority() string {
	switch r {
	case RoleUser:
		return AuthorityUser
	case RoleAdmin:
		return AuthorityAdmin
	default:
		return ""
	}
}

func (r Role) String() string {
	return string(r)
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []Role {
	return []Role{RoleUser, RoleAdmin}
}

// ParseRole parses a role name case-insensitively. An empty name resolves to
// RoleUser.
func ParseRole(name string) (Role, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return RoleUser, true
	}
	role := Role(strings.ToUpper(name))
	return role, role.IsValid()
}

// AuthoritiesFor maps roles to authorities, dropping duplicates and invalid
// roles while keeping the first-seen order.
func AuthoritiesFor(roles ...Role) []string {
	out := make([]string, 0, len(roles))
	seen := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		authority := role.Authority()
		if authority == "" {
			continue
		}
		if _, ok := seen[authority]; ok {
			continue
		}
		seen[authority] = struct{}{}
		out = append(out, authority)
	}
	return out
}

// dedupeAuthorities keeps the first occurrence of each non-empty authority.
func dedupeAuthorities(authorities []string) []string {
	out := make([]string, 0, len(authorities))
	seen := make(map[string]struct{}, len(authorities))
	for _, a := range authorities {
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
