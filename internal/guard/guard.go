package guard

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/util"
)

// Subjects. An absent session is the anonymous subject; a present session maps
// to member or hod from the token's role claim.
const (
	SubjectAnonymous = "anonymous"
	SubjectMember    = "member"
	SubjectHOD       = "hod"
)

// Client views guarded by the reachability table. Views a subject cannot reach
// redirect to home.
const (
	ViewHome    = "/"
	ViewLogin   = "/login"
	ViewSignup  = "/signup"
	ViewSubmit  = "/submit-notice"
	ViewApprove = "/approve-notice"
	ViewDetail  = "/notice-details"
)

const actView = "view"

var views = []string{ViewHome, ViewLogin, ViewSignup, ViewSubmit, ViewApprove, ViewDetail}

const rbacModel = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj) && r.act == p.act`

// Policy rows: view reachability per the session/privilege table, plus the API
// surface enforced by the HTTP middleware. HOD inherits member permissions;
// anonymous inherits nothing, so login/signup stop being reachable once a
// session exists.
var policies = [][]string{
	// views: no session
	{SubjectAnonymous, ViewHome, actView},
	{SubjectAnonymous, ViewLogin, actView},
	{SubjectAnonymous, ViewSignup, actView},
	{SubjectAnonymous, ViewDetail, actView},
	// views: session, unprivileged
	{SubjectMember, ViewHome, actView},
	{SubjectMember, ViewDetail, actView},
	// views: session, privileged
	{SubjectHOD, ViewSubmit, actView},
	{SubjectHOD, ViewApprove, actView},

	// API: any authenticated user
	{SubjectMember, "/api/notices", "POST"},
	{SubjectMember, "/api/logout", "POST"},
	{SubjectMember, "/api/profile", "GET"},
	{SubjectMember, "/api/views", "GET"},
	// API: HOD only
	{SubjectHOD, "/api/notices/pending", "GET"},
	{SubjectHOD, "/api/notices/:id/approve", "POST"},
}

var groupings = [][]string{
	{SubjectHOD, SubjectMember},
}

// NewEnforcer builds the in-memory casbin enforcer holding the whole policy.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	enforcer.AddFunction("keyMatch", util.KeyMatchFunc)

	if _, err := enforcer.AddPolicies(policies); err != nil {
		return nil, err
	}
	if _, err := enforcer.AddGroupingPolicies(groupings); err != nil {
		return nil, err
	}
	return enforcer, nil
}

// Subject maps the two session booleans onto a policy subject.
func Subject(authenticated, privileged bool) string {
	switch {
	case !authenticated:
		return SubjectAnonymous
	case privileged:
		return SubjectHOD
	default:
		return SubjectMember
	}
}

// ViewAccess is one row of the reachability answer handed to the client.
type ViewAccess struct {
	View       string `json:"view"`
	Reachable  bool   `json:"reachable"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// Views evaluates the full reachability table for a subject.
func Views(enforcer *casbin.Enforcer, subject string) ([]ViewAccess, error) {
	result := make([]ViewAccess, 0, len(views))
	for _, v := range views {
		ok, err := enforcer.Enforce(subject, v, actView)
		if err != nil {
			return nil, err
		}
		access := ViewAccess{View: v, Reachable: ok}
		if !ok {
			access.RedirectTo = ViewHome
		}
		result = append(result, access)
	}
	return result, nil
}
