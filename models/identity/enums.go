package identity

import (
	"fmt"
	"strings"
)

// Role is the access level of a user within the platform.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleGuest  Role = "guest"
)

var roles = []Role{RoleOwner, RoleAdmin, RoleMember, RoleGuest}

// EnumValue matches name against the known roles, ignoring case.
func (Role) EnumValue(name string) (any, bool) {
	for _, r := range roles {
		if strings.EqualFold(string(r), name) {
			return r, true
		}
	}
	return nil, false
}

// Plan is the subscription tier of a team.
type Plan int

const (
	PlanFree Plan = iota
	PlanStarter
	PlanPro
	PlanEnterprise
)

var planNames = map[Plan]string{
	PlanFree:       "free",
	PlanStarter:    "starter",
	PlanPro:        "pro",
	PlanEnterprise: "enterprise",
}

func (p Plan) String() string {
	if name, ok := planNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Plan(%d)", int(p))
}

func (Plan) EnumValue(name string) (any, bool) {
	for p, n := range planNames {
		if strings.EqualFold(n, name) {
			return p, true
		}
	}
	return nil, false
}

func (p Plan) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Plan) UnmarshalText(text []byte) error {
	v, ok := Plan(0).EnumValue(string(text))
	if !ok {
		return fmt.Errorf("unknown plan %q", text)
	}
	*p = v.(Plan)
	return nil
}
