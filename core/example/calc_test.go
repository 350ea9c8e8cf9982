package example

import (
	"context"
	"math/big"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/artpar/rpcgate/adapters/clock"
	"github.com/artpar/rpcgate/domain/contract"
	"github.com/artpar/rpcgate/domain/value"
)

func newCalc(t *testing.T) *Calc {
	t.Helper()
	c := NewFactory(clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))().(*Calc)
	c.SetSecurity(contract.SecurityContext{Locale: language.English})
	return c
}

func findOp(t *testing.T, c *Calc, name string) func(context.Context, []value.Value) (value.Value, error) {
	t.Helper()
	for _, op := range c.Operations() {
		if op.Name == name {
			return op.Handler
		}
	}
	t.Fatalf("no operation %q", name)
	return nil
}

func TestCalc_Add(t *testing.T) {
	c := newCalc(t)

	got, err := findOp(t, c, "add")(context.Background(), []value.Value{int32(2), int32(3)})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got != int64(5) {
		t.Errorf("add = %v", got)
	}
}

func TestCalc_Add_AbsentArgsAreZero(t *testing.T) {
	c := newCalc(t)

	got, err := findOp(t, c, "add")(context.Background(), []value.Value{nil, int32(3)})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got != int64(3) {
		t.Errorf("add = %v", got)
	}
}

func TestCalc_Sum(t *testing.T) {
	c := newCalc(t)

	got, err := findOp(t, c, "sum")(context.Background(), []value.Value{value.List{1.5, 2.5, 3.0}})
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if got != 7.0 {
		t.Errorf("sum = %v", got)
	}
}

func TestCalc_Pow2(t *testing.T) {
	c := newCalc(t)

	got, err := findOp(t, c, "pow2")(context.Background(), []value.Value{int32(100)})
	if err != nil {
		t.Fatalf("pow2: %v", err)
	}
	want, _ := new(big.Int).SetString("1267650600228229401496703205376", 10)
	if got.(*big.Int).Cmp(want) != 0 {
		t.Errorf("pow2 = %v", got)
	}
}

func TestCalc_Characters(t *testing.T) {
	c := newCalc(t)

	got, err := findOp(t, c, "characters")(context.Background(), []value.Value{"héllo"})
	if err != nil {
		t.Fatalf("characters: %v", err)
	}
	chars := got.(value.List)
	if len(chars) != 5 || chars[1] != "é" {
		t.Errorf("characters = %v", chars)
	}
}

func TestCalc_Statistics(t *testing.T) {
	c := newCalc(t)

	got, err := findOp(t, c, "statistics")(context.Background(), []value.Value{value.List{4.0, 2.0, 6.0}})
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}

	stats := got.(*value.Object)
	checks := map[string]value.Value{
		"count":   int64(3),
		"sum":     12.0,
		"average": 4.0,
		"minimum": 2.0,
		"maximum": 6.0,
	}
	for key, want := range checks {
		if v, ok := stats.Get(key); !ok || v != want {
			t.Errorf("%s = %v, want %v", key, v, want)
		}
	}
}

func TestCalc_Uptime(t *testing.T) {
	fake := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	factory := NewFactory(fake)
	fake.Advance(90 * time.Second)

	c := factory().(*Calc)
	got, err := findOp(t, c, "uptime")(context.Background(), nil)
	if err != nil {
		t.Fatalf("uptime: %v", err)
	}
	if got != int64(90_000) {
		t.Errorf("uptime = %v, want 90000", got)
	}
}

func TestCalc_SecurityContext(t *testing.T) {
	c := newCalc(t)
	c.SetSecurity(contract.SecurityContext{
		Locale:   language.English,
		Username: "alice",
		Roles:    contract.NewRoleSet(func(role string) bool { return role == "admin" }),
	})

	who, err := findOp(t, c, "whoami")(context.Background(), nil)
	if err != nil || who != "alice" {
		t.Errorf("whoami = %v, %v", who, err)
	}

	admin, err := findOp(t, c, "isAdmin")(context.Background(), nil)
	if err != nil || admin != true {
		t.Errorf("isAdmin = %v, %v", admin, err)
	}
}

func TestCalc_Manifest(t *testing.T) {
	c := newCalc(t)

	got, err := findOp(t, c, "manifest")(context.Background(), nil)
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	res, ok := got.(*value.Resource)
	if !ok {
		t.Fatalf("manifest should return a resource, got %T", got)
	}
	text, _ := res.Value.(string)
	if !strings.Contains(text, "calc") {
		t.Errorf("manifest text = %q", text)
	}
}

func TestCalc_RegisteredAsCalc(t *testing.T) {
	factory, err := contract.Resolve("calc")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, ok := factory().(*Calc); !ok {
		t.Error("calc should resolve to the example contract")
	}
}
