// Package authz derives display-level authorization roles from session
// tokens. The decode is advisory only: the claims segment is read WITHOUT
// signature verification, so the result must never gate anything beyond UI
// visibility. Real enforcement happens in the authenticated middleware and
// the store layer, which verify the token before trusting its claims.
package authz

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Role is an authorization label carried in the user_roles claim.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleViewer  Role = "viewer"
	// RoleNone is returned for missing claims and any decode failure.
	RoleNone Role = ""
)

// globalKey grants its role for every resource when set to admin.
const globalKey = "_global"

// ResolveRole returns the caller's role for the named resource from the
// token's user_roles claim. Any failure (malformed token, bad base64,
// invalid JSON, missing claim) yields RoleNone: authorization fails closed.
func ResolveRole(token, resource string) Role {
	claims, ok := decodeClaims(token)
	if !ok {
		return RoleNone
	}
	rawRoles, ok := claims["user_roles"].(map[string]any)
	if !ok {
		return RoleNone
	}
	roles := make(map[string]string, len(rawRoles))
	for k, v := range rawRoles {
		if s, ok := v.(string); ok {
			roles[k] = s
		}
	}
	return RoleFromMap(roles, resource)
}

// RoleFromMap applies the user_roles lookup rules to a claim map that has
// already been verified. Both the advisory decode above and the enforcing
// middleware route through it so the two can never disagree.
func RoleFromMap(roles map[string]string, resource string) Role {
	if Role(roles[globalKey]) == RoleAdmin {
		return RoleAdmin
	}
	if r := roles[resource]; r != "" {
		return Role(r)
	}
	return RoleNone
}

// CanManage reports whether the role is allowed to create habits and view
// habit details.
func (r Role) CanManage() bool {
	return r == RoleAdmin || r == RoleManager
}

// decodeClaims extracts the JSON payload of a JWT-shaped token without
// verifying its signature.
func decodeClaims(token string) (map[string]any, bool) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return nil, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil, false
	}
	var claims map[string]any
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, false
	}
	return claims, true
}
