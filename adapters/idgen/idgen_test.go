package idgen_test

import (
	"regexp"
	"testing"

	"github.com/artpar/rpcgate/adapters/idgen"
)

func TestUUID_New(t *testing.T) {
	g := idgen.UUID{}

	id := g.New()

	// UUID v4 format: 8-4-4-4-12 hex chars
	uuidRegex := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	if !uuidRegex.MatchString(id) {
		t.Errorf("ID %s doesn't match UUID v4 format", id)
	}
}

func TestUUID_New_Unique(t *testing.T) {
	g := idgen.UUID{}

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.New()
		if seen[id] {
			t.Errorf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestSequential_New(t *testing.T) {
	g := idgen.NewSequential("evt_")

	for i, want := range []string{"evt_1", "evt_2", "evt_3"} {
		if id := g.New(); id != want {
			t.Errorf("call %d: ID = %s, want %s", i, id, want)
		}
	}
}

func TestSequential_Reset(t *testing.T) {
	g := idgen.NewSequential("")

	g.New()
	g.New()
	g.Reset()

	if id := g.New(); id != "1" {
		t.Errorf("ID after reset = %s, want 1", id)
	}
}
