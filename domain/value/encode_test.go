package value_test

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/artpar/rpcgate/domain/fault"
	"github.com/artpar/rpcgate/domain/value"
	"github.com/shopspring/decimal"
)

func encode(t *testing.T, v value.Value) string {
	t.Helper()
	var sb strings.Builder
	if err := value.NewEncoder(&sb).Encode(v); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	return sb.String()
}

func TestEncode_Scalars(t *testing.T) {
	bigInt, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	dec, _ := decimal.NewFromString("3.14159")

	tests := []struct {
		name string
		in   value.Value
		want string
	}{
		{"null", nil, "null"},
		{"string", "hello", `"hello"`},
		{"true", true, "true"},
		{"false", false, "false"},
		{"int", 42, "42"},
		{"int8", int8(-5), "-5"},
		{"int16", int16(300), "300"},
		{"int32", int32(70000), "70000"},
		{"int64", int64(-9000000000), "-9000000000"},
		{"uint64", uint64(18446744073709551615), "18446744073709551615"},
		{"float32", float32(2.5), "2.5"},
		{"float64", 0.125, "0.125"},
		{"big int", bigInt, "123456789012345678901234567890"},
		{"decimal", dec, "3.14159"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := encode(t, tt.in); got != tt.want {
				t.Errorf("Encode(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncode_StringEscaping(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"quote backslash slash", `a"b\c/d`, `"a\"b\\c\/d"`},
		{"control characters", "a\b\f\n\r\tz", `"a\b\f\n\r\tz"`},
		{"unicode passes verbatim", "héllo – 世界", `"héllo – 世界"`},
		{"empty", "", `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := encode(t, tt.in); got != tt.want {
				t.Errorf("Encode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncode_List(t *testing.T) {
	got := encode(t, value.List{int64(1), int64(2), int64(3)})
	want := "[\n  1,\n  2,\n  3\n]"
	if got != want {
		t.Errorf("Encode(list) = %q, want %q", got, want)
	}
}

func TestEncode_EmptyList_KeepsNewlineBeforeBracket(t *testing.T) {
	// The empty container form is "[\n]", never "[]". Wire compatibility.
	if got := encode(t, value.List{}); got != "[\n]" {
		t.Errorf("Encode(empty list) = %q, want %q", got, "[\n]")
	}
}

func TestEncode_EmptyObject_KeepsNewlineBeforeBracket(t *testing.T) {
	if got := encode(t, value.NewObject()); got != "{\n}" {
		t.Errorf("Encode(empty object) = %q, want %q", got, "{\n}")
	}
}

func TestEncode_Object_PreservesInsertionOrder(t *testing.T) {
	obj := value.NewObject().
		Set("name", "add").
		Set("count", int64(2))

	got := encode(t, obj)
	want := "{\n  \"name\": \"add\",\n  \"count\": 2\n}"
	if got != want {
		t.Errorf("Encode(object) = %q, want %q", got, want)
	}
}

func TestEncode_NestedIndentation(t *testing.T) {
	obj := value.NewObject().Set("items", value.List{value.List{"x"}})

	got := encode(t, obj)
	want := "{\n  \"items\": [\n    [\n      \"x\"\n    ]\n  ]\n}"
	if got != want {
		t.Errorf("Encode(nested) = %q, want %q", got, want)
	}
}

func TestEncode_NonStringKey_Faults(t *testing.T) {
	obj := value.FromEntries([]value.Entry{{Key: 7, Value: "x"}})

	err := value.NewEncoder(&strings.Builder{}).Encode(obj)
	if fault.KindOf(err) != fault.KindEncoding {
		t.Fatalf("expected encoding fault, got %v", err)
	}
}

func TestEncode_UnsupportedType_Faults(t *testing.T) {
	err := value.NewEncoder(&strings.Builder{}).Encode(make(chan int))
	if fault.KindOf(err) != fault.KindEncoding {
		t.Fatalf("expected encoding fault, got %v", err)
	}
}

type countingCloser struct {
	closes int
	err    error
}

func (c *countingCloser) Close() error {
	c.closes++
	return c.err
}

func TestEncode_Resource_ReleasedExactlyOnce(t *testing.T) {
	closer := &countingCloser{}
	res := value.NewResource(value.List{"line"}, closer)

	var sb strings.Builder
	if err := value.NewEncoder(&sb).Encode(res); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if closer.closes != 1 {
		t.Errorf("closes = %d, want 1", closer.closes)
	}
	if want := "[\n  \"line\"\n]"; sb.String() != want {
		t.Errorf("body = %q, want %q", sb.String(), want)
	}
}

func TestEncode_Resource_ReleasedOnFault(t *testing.T) {
	closer := &countingCloser{}
	res := value.NewResource(make(chan int), closer)

	err := value.NewEncoder(&strings.Builder{}).Encode(res)
	if fault.KindOf(err) != fault.KindEncoding {
		t.Fatalf("expected encoding fault, got %v", err)
	}
	if closer.closes != 1 {
		t.Errorf("closes = %d, want 1", closer.closes)
	}
}

func TestEncode_Resource_ReleaseFailureIsEncodingFault(t *testing.T) {
	closer := &countingCloser{err: errors.New("stream already closed")}
	res := value.NewResource("ok", closer)

	err := value.NewEncoder(&strings.Builder{}).Encode(res)
	if fault.KindOf(err) != fault.KindEncoding {
		t.Fatalf("expected encoding fault on release failure, got %v", err)
	}
}
