package domain

import (
	"fmt"
	"strings"
)

// Namespace identifies one of the two isolated session scopes held per browser.
type Namespace string

const (
	NamespaceShopper       Namespace = "shopper"
	NamespaceAdministrator Namespace = "administrator"
)

// Roles carried in the credential's "role" claim.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// DefaultAdminPrefix is the route prefix of the administrator area.
const DefaultAdminPrefix = "/admin"

// Namespaces lists both scopes in a stable order.
var Namespaces = []Namespace{NamespaceShopper, NamespaceAdministrator}

// ParseNamespace accepts the canonical names and the short aliases the
// storefront sends in the X-Use-Session header ("user", "admin").
func ParseNamespace(s string) (Namespace, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "shopper", "user":
		return NamespaceShopper, nil
	case "administrator", "admin":
		return NamespaceAdministrator, nil
	}
	return "", fmt.Errorf("%w: unknown session namespace %q", ErrInvalidInput, s)
}

// Valid reports whether n is one of the two known namespaces.
func (n Namespace) Valid() bool {
	return n == NamespaceShopper || n == NamespaceAdministrator
}

// ExpectedRole is the role claim a credential must carry to live in n.
func (n Namespace) ExpectedRole() string {
	if n == NamespaceAdministrator {
		return RoleAdmin
	}
	return RoleUser
}

// LoginPath is the login screen the storefront redirects to when the
// namespace's session ends.
func (n Namespace) LoginPath(adminPrefix string) string {
	if n == NamespaceAdministrator {
		return strings.TrimRight(adminPrefix, "/") + "/login"
	}
	return "/login"
}

// Other returns the opposite namespace.
func (n Namespace) Other() Namespace {
	if n == NamespaceAdministrator {
		return NamespaceShopper
	}
	return NamespaceAdministrator
}

func (n Namespace) String() string { return string(n) }

// RouteNamespace maps a route path to the namespace that owns it.
func RouteNamespace(route, adminPrefix string) Namespace {
	if IsAdminRoute(route, adminPrefix) {
		return NamespaceAdministrator
	}
	return NamespaceShopper
}

// IsAdminRoute reports whether route falls under adminPrefix. "/admin" and
// "/admin/..." match; "/administrators" does not.
func IsAdminRoute(route, adminPrefix string) bool {
	prefix := strings.TrimRight(adminPrefix, "/")
	if prefix == "" {
		prefix = DefaultAdminPrefix
	}
	if route == prefix {
		return true
	}
	return strings.HasPrefix(route, prefix+"/")
}
