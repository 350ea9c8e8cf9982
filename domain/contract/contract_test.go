package contract_test

import (
	"errors"
	"testing"

	"github.com/artpar/rpcgate/domain/contract"
	"github.com/artpar/rpcgate/domain/fault"
	"github.com/artpar/rpcgate/domain/operation"
	"golang.org/x/text/language"
)

type nullContract struct {
	contract.Service
}

func (n *nullContract) Operations() []operation.Operation { return nil }

func TestRoleSet_ContainsQueriesPredicate(t *testing.T) {
	roles := contract.NewRoleSet(func(role string) bool { return role == "admin" })

	if !roles.Contains("admin") {
		t.Error("Contains(admin) = false, want true")
	}
	if roles.Contains("auditor") {
		t.Error("Contains(auditor) = true, want false")
	}
}

func TestRoleSet_AnonymousHoldsNoRoles(t *testing.T) {
	var roles contract.RoleSet
	if roles.Contains("admin") {
		t.Error("anonymous caller should hold no roles")
	}
}

func TestRoleSet_EnumerationIsUnsupported(t *testing.T) {
	roles := contract.NewRoleSet(func(string) bool { return true })

	names, err := roles.Names()
	if !errors.Is(err, contract.ErrRoleEnumeration) {
		t.Fatalf("Names() error = %v, want ErrRoleEnumeration", err)
	}
	if names != nil {
		t.Errorf("Names() = %v, want nil (never a partial set)", names)
	}
}

func TestSecurityContext_Anonymous(t *testing.T) {
	anon := contract.SecurityContext{Locale: language.English}
	if !anon.Anonymous() {
		t.Error("context without username should be anonymous")
	}

	named := contract.SecurityContext{Username: "marge"}
	if named.Anonymous() {
		t.Error("context with username should not be anonymous")
	}
}

func TestService_CarriesSecurityContext(t *testing.T) {
	svc := &nullContract{}
	sc := contract.SecurityContext{Locale: language.French, Username: "amelie"}

	svc.SetSecurity(sc)

	got := svc.Security()
	if got.Username != "amelie" || got.Locale != language.French {
		t.Errorf("Security() = %+v, want %+v", got, sc)
	}
}

func TestResolve_UnknownNameIsConfigurationFault(t *testing.T) {
	_, err := contract.Resolve("no-such-contract")
	if fault.KindOf(err) != fault.KindConfiguration {
		t.Fatalf("Resolve() error = %v, want configuration fault", err)
	}
}

func TestRegisterAndResolve(t *testing.T) {
	contract.Register("contract-test", func() contract.Contract { return &nullContract{} })

	f, err := contract.Resolve("contract-test")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if f() == nil {
		t.Error("factory returned nil contract")
	}
}
