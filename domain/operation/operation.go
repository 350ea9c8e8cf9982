// Package operation defines the schema of a service contract's invocable
// surface: named operations, ordered parameter lists, and the wire-level
// type labels used by the introspection descriptors.
package operation

import (
	"context"
	"math/big"
	"reflect"

	"github.com/artpar/rpcgate/domain/value"
	"github.com/shopspring/decimal"
)

// ScalarType enumerates the parameter types the coercer understands.
type ScalarType int

const (
	String ScalarType = iota
	Byte
	Short
	Int
	Long
	Float
	Double
	BigInteger
	BigDecimal
	Boolean
)

// String returns the scalar type's name.
func (s ScalarType) String() string {
	switch s {
	case String:
		return "String"
	case Byte:
		return "Byte"
	case Short:
		return "Short"
	case Int:
		return "Int"
	case Long:
		return "Long"
	case Float:
		return "Float"
	case Double:
		return "Double"
	case BigInteger:
		return "BigInteger"
	case BigDecimal:
		return "BigDecimal"
	case Boolean:
		return "Boolean"
	default:
		return "Unknown"
	}
}

// Parameter describes a single declared parameter. A parameter is either a
// scalar or a single-level list of scalars; lists of lists do not exist.
type Parameter struct {
	Name string
	Type ScalarType
	List bool
}

// Scalar declares a scalar parameter.
func Scalar(name string, t ScalarType) Parameter {
	return Parameter{Name: name, Type: t}
}

// ListOf declares a list parameter with the given element type.
func ListOf(name string, t ScalarType) Parameter {
	return Parameter{Name: name, Type: t, List: true}
}

// Label returns the descriptor type label for the parameter.
func (p Parameter) Label() TypeLabel {
	if p.List {
		return LabelArray
	}
	switch p.Type {
	case String:
		return LabelString
	case Boolean:
		return LabelBoolean
	default:
		return LabelNumber
	}
}

// TypeLabel is the wire-level type classification used by descriptors.
type TypeLabel string

const (
	// LabelNone marks the absence of a return value; it is omitted from
	// descriptors rather than emitted as a label.
	LabelNone TypeLabel = ""

	LabelString      TypeLabel = "string"
	LabelNumber      TypeLabel = "number"
	LabelBoolean     TypeLabel = "boolean"
	LabelArray       TypeLabel = "array"
	LabelObject      TypeLabel = "object"
	LabelNull        TypeLabel = "null"
	LabelUnsupported TypeLabel = "unsupported"
)

var (
	bigIntType  = reflect.TypeOf(big.Int{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// ClassifyType statically classifies a declared Go type into a descriptor
// label. Contracts that derive their schema from Go types use this instead
// of naming labels by hand. A nil type means no return value.
func ClassifyType(t reflect.Type) TypeLabel {
	if t == nil {
		return LabelNone
	}
	if t.Kind() == reflect.Pointer {
		return ClassifyType(t.Elem())
	}
	if t == bigIntType || t == decimalType {
		return LabelNumber
	}

	switch t.Kind() {
	case reflect.String:
		return LabelString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return LabelNumber
	case reflect.Bool:
		return LabelBoolean
	case reflect.Slice, reflect.Array:
		return LabelArray
	case reflect.Map:
		if t.Key().Kind() == reflect.String {
			return LabelObject
		}
		return LabelUnsupported
	default:
		return LabelUnsupported
	}
}

// Handler executes an operation against coerced arguments, in declared
// parameter order. The scheduling model is synchronous and blocking; the
// context travels through for handlers that perform I/O.
type Handler func(ctx context.Context, args []value.Value) (value.Value, error)

// Operation is one named, invocable unit on a service contract.
type Operation struct {
	Name    string
	Params  []Parameter
	Returns TypeLabel
	Handler Handler
}

// HasReturn reports whether the operation produces a response body.
func (op Operation) HasReturn() bool { return op.Returns != LabelNone }
