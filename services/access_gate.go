package services

import "dealer-portal-api/models"

// GateDecision is the outcome of an access check.
type GateDecision int

const (
	// DecisionAllow lets the request through.
	DecisionAllow GateDecision = iota
	// DecisionRedirectLogin means no authenticated session exists.
	DecisionRedirectLogin
	// DecisionRedirectNotFound hides a disabled module from regular users.
	DecisionRedirectNotFound
	// DecisionRedirectDashboard bounces users lacking the required role.
	DecisionRedirectDashboard
	// DecisionShowDisabled tells a super admin the module is off and where
	// to turn it back on.
	DecisionShowDisabled
)

func (d GateDecision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionRedirectLogin:
		return "redirect_login"
	case DecisionRedirectNotFound:
		return "redirect_not_found"
	case DecisionRedirectDashboard:
		return "redirect_dashboard"
	case DecisionShowDisabled:
		return "show_disabled"
	}
	return "unknown"
}

// GateInput carries everything the gate needs; the gate itself performs no
// lookups and has no side effects.
type GateInput struct {
	Authenticated bool
	User          *models.User
	// ModuleKey gates on a feature module when non-empty; ModuleEnabled is
	// the flag state resolved by the caller.
	ModuleKey     string
	ModuleEnabled bool
	// RequiredRoles restricts access to the listed roles when non-empty.
	RequiredRoles []string
}

// DecideAccess applies the portal's access policy. First match wins, and the
// order matters: the module check runs before the role check, so a user
// lacking the module sees a different failure than a user lacking the role.
func DecideAccess(in GateInput) GateDecision {
	if !in.Authenticated || in.User == nil {
		return DecisionRedirectLogin
	}

	if in.ModuleKey != "" && !in.ModuleEnabled {
		if in.User.Role == models.RoleSuperAdmin {
			return DecisionShowDisabled
		}
		return DecisionRedirectNotFound
	}

	if len(in.RequiredRoles) > 0 {
		allowed := false
		for _, r := range in.RequiredRoles {
			if r == in.User.Role {
				allowed = true
				break
			}
		}
		if !allowed {
			return DecisionRedirectDashboard
		}
	}

	return DecisionAllow
}
