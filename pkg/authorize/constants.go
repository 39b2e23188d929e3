package authorize

import (
	"fmt"
	"strconv"
	"strings"
)

type Action string
type Resource string
type Role string
type Domain string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionManage Action = "manage"

	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionRead: {}, ActionUpdate: {}, ActionManage: {},
}

const (
	ResourceHospital        Resource = "hospital"
	ResourceHospitalMembers Resource = "hospital_members"

	WildcardResource Resource = "*"
)

var KnownResources = map[Resource]struct{}{
	ResourceHospital: {}, ResourceHospitalMembers: {},
}

// Roles are granted per hospital domain.
const (
	RoleHospitalAdmin  Role = "role:hospital:admin"
	RoleHospitalMember Role = "role:hospital:member"
)

var KnownRoles = map[Role]struct{}{
	RoleHospitalAdmin:  {},
	RoleHospitalMember: {},
}

const (
	DomainPrefixHospital = "hospital:"

	WildcardDomain Domain = "*"
)

func HospitalDomain(hospitalID int64) Domain {
	return Domain(fmt.Sprintf("%s%d", DomainPrefixHospital, hospitalID))
}

// IsValidDomain accepts the wildcard and hospital:<positive id>.
func IsValidDomain(d Domain) bool {
	if d == WildcardDomain {
		return true
	}
	id, ok := strings.CutPrefix(string(d), DomainPrefixHospital)
	if !ok {
		return false
	}
	n, err := strconv.ParseInt(id, 10, 64)
	return err == nil && n > 0
}

type PolicyEffect string

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// GroupSubject is the g.sub in Casbin: a veterinarian id.
type GroupSubject string

func VeterinarianSubject(id int64) GroupSubject {
	return GroupSubject("vet:" + strconv.FormatInt(id, 10))
}

// Permission rows: p, role, domain, resource, action, eft
type PermissionPolicy struct {
	Subject Role
	Domain  Domain
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}

// DefaultModel is used when no model file is configured. It matches
// casbin_model.conf at the repository root.
const DefaultModel = `[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act, eft

[role_definition]
g = _, _, _

[policy_effect]
e = some(where (p.eft == allow)) && !some(where (p.eft == deny))

[matchers]
m = g(r.sub, p.sub, r.dom) && (p.dom == "*" || p.dom == r.dom) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act || p.act == "manage")
`
