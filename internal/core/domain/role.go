package domain

import "fmt"

// Role is the closed set of roles an identity can hold.
type Role string

const (
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleAgent         Role = "AGENT"
	RoleClient        Role = "CLIENT"
)

// AllRoles lists every recognised role. Keep in sync with ParseRole.
var AllRoles = []Role{RoleAdministrator, RoleAgent, RoleClient}

// ParseRole converts a raw string into a Role. Unknown values yield ErrMalformedInput.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdministrator, RoleAgent, RoleClient:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrMalformedInput, s)
	}
}

// Valid reports whether r is one of the recognised roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string { return string(r) }
