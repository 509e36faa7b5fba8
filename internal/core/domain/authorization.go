package domain

// RoleSet is an immutable set of roles allowed to perform an operation.
type RoleSet struct {
	roles map[Role]struct{}
}

// NewRoleSet builds a RoleSet. Unrecognised roles are ignored so they can never grant access.
func NewRoleSet(roles ...Role) RoleSet {
	set := RoleSet{roles: make(map[Role]struct{}, len(roles))}
	for _, r := range roles {
		if r.Valid() {
			set.roles[r] = struct{}{}
		}
	}
	return set
}

// Contains reports whether r is a member of the set.
func (s RoleSet) Contains(r Role) bool {
	_, ok := s.roles[r]
	return ok
}

// Roles returns the members in AllRoles order.
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(s.roles))
	for _, r := range AllRoles {
		if s.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Authorize decides whether the resolved claims may proceed given the allowed set.
func Authorize(claims *Claims, allowed RoleSet) Decision {
	if claims == nil {
		return Decision{Reason: "no resolved identity"}
	}
	if !allowed.Contains(claims.Role) {
		return Decision{Reason: "insufficient role"}
	}
	return Decision{Allowed: true}
}
