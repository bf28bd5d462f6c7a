// Package token inspects session credentials without verifying them.
//
// The storefront holds no verification key, so nothing here is a security
// control: the remote API authorizes every request on its own. The role and
// expiry checks only keep a browser from presenting a session that is
// obviously stale or belongs to the other namespace.
package token

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode returns the payload claims of credential. It reports false for
// anything that is not three dot-separated segments with a base64url JSON
// object in the middle.
func Decode(credential string) (jwt.MapClaims, bool) {
	parts := strings.Split(credential, ".")
	if len(parts) != 3 || parts[1] == "" {
		return nil, false
	}
	payload, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, false
	}
	var claims jwt.MapClaims
	if err := json.Unmarshal(payload, &claims); err != nil || claims == nil {
		return nil, false
	}
	return claims, true
}

// IsExpired reports whether credential is past its exp claim. Undecodable
// credentials and credentials without exp count as expired.
func IsExpired(credential string) bool {
	claims, ok := Decode(credential)
	if !ok {
		return true
	}
	return expired(claims)
}

func expired(claims jwt.MapClaims) bool {
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.Unix() < NowTimeFunc().Unix()
}

// IsValid reports whether credential decodes and has not expired.
func IsValid(credential string) bool {
	claims, ok := Decode(credential)
	return ok && !expired(claims)
}

// RoleOf returns the role claim of credential.
func RoleOf(credential string) (string, bool) {
	claims, ok := Decode(credential)
	if !ok {
		return "", false
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return "", false
	}
	return role, true
}

// HasRole reports whether credential carries role, ignoring case.
func HasRole(credential, role string) bool {
	got, ok := RoleOf(credential)
	return ok && strings.EqualFold(got, role)
}
