// Package contract defines the service contract abstraction: the capability
// surface a dispatcher instantiates per request, the per-request security
// context injected into it, and the process-wide registry of named contract
// factories the host resolves at startup.
package contract

import (
	"errors"
	"sort"
	"sync"

	"github.com/artpar/rpcgate/domain/fault"
	"github.com/artpar/rpcgate/domain/operation"
	"golang.org/x/text/language"
)

// Contract is the capability surface a request is dispatched against. A
// fresh instance is constructed for every request; implementations must not
// share mutable state between instances.
type Contract interface {
	// SetSecurity injects the per-request security context before any
	// operation is invoked.
	SetSecurity(SecurityContext)

	// Operations returns the contract's invocable surface with handlers
	// bound to this instance.
	Operations() []operation.Operation
}

// Factory constructs a fresh contract instance.
type Factory func() Contract

// RolePredicate answers role-membership queries for one caller.
type RolePredicate func(role string) bool

// ErrRoleEnumeration is returned when a caller attempts to list roles.
// Membership is a predicate, never an enumerable set; returning an empty or
// partial list would silently lie.
var ErrRoleEnumeration = errors.New("role enumeration is not supported")

// RoleSet is a queryable-only view of the caller's roles.
type RoleSet struct {
	predicate RolePredicate
}

// NewRoleSet creates a role set backed by a membership predicate.
func NewRoleSet(p RolePredicate) RoleSet {
	return RoleSet{predicate: p}
}

// Contains reports whether the caller holds the named role. Anonymous
// callers hold no roles.
func (r RoleSet) Contains(role string) bool {
	if r.predicate == nil {
		return false
	}
	return r.predicate(role)
}

// Names always fails with ErrRoleEnumeration.
func (r RoleSet) Names() ([]string, error) {
	return nil, ErrRoleEnumeration
}

// SecurityContext is the per-request bundle of locale, optional caller
// identity, and role-membership predicate. It is owned exclusively by one
// request and discarded when the request ends.
type SecurityContext struct {
	Locale   language.Tag
	Username string // empty for anonymous callers
	Roles    RoleSet
}

// Anonymous reports whether the request carries no authenticated identity.
func (s SecurityContext) Anonymous() bool { return s.Username == "" }

// Service is an embeddable base for contract implementations. It carries
// the injected security context and satisfies the SetSecurity half of the
// Contract interface.
type Service struct {
	security SecurityContext
}

// SetSecurity stores the per-request security context.
func (s *Service) SetSecurity(sc SecurityContext) { s.security = sc }

// Security returns the injected security context.
func (s *Service) Security() SecurityContext { return s.security }

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes a contract factory available under the given name. It is
// intended to be called from package init functions; registering a nil
// factory or the same name twice panics.
func Register(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	if f == nil {
		panic("contract: Register factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("contract: Register called twice for " + name)
	}
	factories[name] = f
}

// Resolve looks up a registered factory by name. An unknown name is a
// configuration fault: the dispatcher must not start without a contract.
func Resolve(name string) (Factory, error) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	f, ok := factories[name]
	if !ok {
		return nil, fault.Configuration("unknown service contract %q (registered: %v)", name, registeredLocked())
	}
	return f, nil
}

func registeredLocked() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
