package rbac

import "strings"

type Role string
type Action string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)

func allows(role Role, action Action) bool {
	switch role {
	case RoleAdmin:
		return action == ActionRead || action == ActionWrite
	case RoleUser:
		return action == ActionRead
	default:
		return false
	}
}

// Can reports whether any of the roles grants the action.
func Can(roles []Role, action Action) bool {
	for _, role := range roles {
		if allows(role, action) {
			return true
		}
	}
	return false
}

// Normalize maps "admin", "ROLE_ADMIN" and similar spellings onto a known role.
// Unknown roles normalize to the empty role, which grants nothing.
func Normalize(role string) Role {
	upper := strings.ToUpper(strings.TrimSpace(role))
	upper = strings.TrimPrefix(upper, "ROLE_")
	switch Role(upper) {
	case RoleUser, RoleAdmin:
		return Role(upper)
	default:
		return ""
	}
}

func NormalizeAll(roles []string) []Role {
	normalized := make([]Role, 0, len(roles))
	for _, role := range roles {
		if r := Normalize(role); r != "" {
			normalized = append(normalized, r)
		}
	}
	return normalized
}
