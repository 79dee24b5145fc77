package auth

import "strings"

// Role represents a dashboard user role.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleInvestor  Role = "investor"
	RoleLegal     Role = "legal"
	RoleProducer  Role = "producer"
	RoleCFO       Role = "cfo"
	RoleAdmin     Role = "admin"
)

// NormalizeRole validates and normalizes a role string.
func NormalizeRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	switch role {
	case RoleInvestor, RoleLegal, RoleProducer, RoleCFO, RoleAdmin:
		return role, true
	default:
		return "", false
	}
}

// RoleAtLeast returns true when role satisfies required role.
func RoleAtLeast(role Role, required Role) bool {
	return roleRank(role) >= roleRank(required)
}

func roleRank(role Role) int {
	switch role {
	case RoleInvestor:
		return 1
	case RoleLegal, RoleProducer:
		return 2
	case RoleCFO:
		return 3
	case RoleAdmin:
		return 4
	default:
		return 0
	}
}
