package app_test

import (
	"reflect"
	"testing"

	"github.com/artpar/rpcgate/app"
	"github.com/artpar/rpcgate/domain/fault"
	"github.com/artpar/rpcgate/domain/operation"
)

func TestRegistry_LookupIsCaseSensitive(t *testing.T) {
	reg, err := app.NewRegistry([]operation.Operation{{Name: "Add"}})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	if _, err := reg.Lookup("Add"); err != nil {
		t.Errorf("Lookup(Add) failed: %v", err)
	}
	if _, err := reg.Lookup("add"); fault.KindOf(err) != fault.KindNotFound {
		t.Errorf("Lookup(add) error = %v, want not found", err)
	}
	if _, err := reg.Lookup("ADD"); fault.KindOf(err) != fault.KindNotFound {
		t.Errorf("Lookup(ADD) error = %v, want not found", err)
	}
}

func TestRegistry_DuplicateNamesLastWins(t *testing.T) {
	reg, err := app.NewRegistry([]operation.Operation{
		{Name: "echo", Returns: operation.LabelString},
		{Name: "echo", Returns: operation.LabelNumber},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	if reg.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", reg.Len())
	}
	op, _ := reg.Lookup("echo")
	if op.Returns != operation.LabelNumber {
		t.Errorf("Returns = %q, want the later registration", op.Returns)
	}
}

func TestRegistry_NamesSortedRegardlessOfRegistrationOrder(t *testing.T) {
	reg, err := app.NewRegistry([]operation.Operation{
		{Name: "sum"}, {Name: "add"}, {Name: "ping"},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	want := []string{"add", "ping", "sum"}
	if !reflect.DeepEqual(reg.Names(), want) {
		t.Errorf("Names() = %v, want %v", reg.Names(), want)
	}
}

func TestRegistry_UnsupportedParameterTypeFailsAtStartup(t *testing.T) {
	_, err := app.NewRegistry([]operation.Operation{{
		Name:   "broken",
		Params: []operation.Parameter{{Name: "p", Type: operation.ScalarType(99)}},
	}})
	if fault.KindOf(err) != fault.KindConfiguration {
		t.Errorf("NewRegistry error = %v, want configuration fault", err)
	}
}

func TestRegistry_UnnamedOperationFailsAtStartup(t *testing.T) {
	_, err := app.NewRegistry([]operation.Operation{{Name: ""}})
	if fault.KindOf(err) != fault.KindConfiguration {
		t.Errorf("NewRegistry error = %v, want configuration fault", err)
	}
}
