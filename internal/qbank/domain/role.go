package domain

import "fmt"

// Role is the closed set of roles a user can hold within a company.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleEvaluator Role = "evaluator"
	RoleCandidate Role = "candidate"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEvaluator, RoleCandidate:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseInvitableRole parses a role string for use in an invitation. Admins
// are only created through company registration, so "admin" is rejected here
// along with anything outside the enumeration.
func ParseInvitableRole(s string) (Role, error) {
	switch Role(s) {
	case RoleEvaluator:
		return RoleEvaluator, nil
	case RoleCandidate:
		return RoleCandidate, nil
	}
	return "", fmt.Errorf("role %q is not invitable", s)
}
