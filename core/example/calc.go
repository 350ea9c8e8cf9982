// Package example hosts the built-in "calc" contract: a small arithmetic
// and introspection service exercising every parameter type, list
// parameters, object and resource results, and the caller security
// context. It doubles as the reference for writing contracts of your own.
package example

import (
	"context"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/artpar/rpcgate/adapters/clock"
	"github.com/artpar/rpcgate/domain/contract"
	"github.com/artpar/rpcgate/domain/operation"
	"github.com/artpar/rpcgate/domain/value"
	"github.com/artpar/rpcgate/ports"
)

func init() {
	contract.Register("calc", NewFactory(clock.Real{}))
}

// Calc is the example contract. A fresh instance serves each request.
type Calc struct {
	contract.Service
	clock ports.Clock
	start time.Time
}

// NewFactory creates a calc factory. The start time is captured once, so
// uptime measures the life of the factory, not of any single instance.
func NewFactory(c ports.Clock) contract.Factory {
	start := c.Now()
	return func() contract.Contract {
		return &Calc{clock: c, start: start}
	}
}

// Operations declares the calc surface.
func (c *Calc) Operations() []operation.Operation {
	return []operation.Operation{
		{
			Name: "add",
			Params: []operation.Parameter{
				operation.Scalar("a", operation.Int),
				operation.Scalar("b", operation.Int),
			},
			Returns: operation.LabelNumber,
			Handler: c.add,
		},
		{
			Name: "sum",
			Params: []operation.Parameter{
				operation.ListOf("values", operation.Double),
			},
			Returns: operation.LabelNumber,
			Handler: c.sum,
		},
		{
			Name: "multiply",
			Params: []operation.Parameter{
				operation.Scalar("a", operation.BigDecimal),
				operation.Scalar("b", operation.BigDecimal),
			},
			Returns: operation.LabelNumber,
			Handler: c.multiply,
		},
		{
			Name: "pow2",
			Params: []operation.Parameter{
				operation.Scalar("exponent", operation.Int),
			},
			Returns: operation.LabelNumber,
			Handler: c.pow2,
		},
		{
			Name: "echo",
			Params: []operation.Parameter{
				operation.Scalar("text", operation.String),
			},
			Returns: operation.LabelString,
			Handler: c.echo,
		},
		{
			Name: "invert",
			Params: []operation.Parameter{
				operation.Scalar("flag", operation.Boolean),
			},
			Returns: operation.LabelBoolean,
			Handler: c.invert,
		},
		{
			Name: "characters",
			Params: []operation.Parameter{
				operation.Scalar("text", operation.String),
			},
			Returns: operation.LabelArray,
			Handler: c.characters,
		},
		{
			Name: "statistics",
			Params: []operation.Parameter{
				operation.ListOf("values", operation.Double),
			},
			Returns: operation.LabelObject,
			Handler: c.statistics,
		},
		{
			Name:    "manifest",
			Returns: operation.LabelString,
			Handler: c.manifest,
		},
		{
			Name:    "ping",
			Handler: c.ping,
		},
		{
			Name:    "uptime",
			Returns: operation.LabelNumber,
			Handler: c.uptime,
		},
		{
			Name:    "whoami",
			Returns: operation.LabelString,
			Handler: c.whoami,
		},
		{
			Name:    "isAdmin",
			Returns: operation.LabelBoolean,
			Handler: c.isAdmin,
		},
	}
}

func (c *Calc) add(ctx context.Context, args []value.Value) (value.Value, error) {
	a := argInt(args[0])
	b := argInt(args[1])
	return a + b, nil
}

func (c *Calc) sum(ctx context.Context, args []value.Value) (value.Value, error) {
	total := 0.0
	for _, v := range args[0].(value.List) {
		total += v.(float64)
	}
	return total, nil
}

func (c *Calc) multiply(ctx context.Context, args []value.Value) (value.Value, error) {
	a := argDecimal(args[0])
	b := argDecimal(args[1])
	return a.Mul(b), nil
}

func (c *Calc) pow2(ctx context.Context, args []value.Value) (value.Value, error) {
	exp := argInt(args[0])
	if exp < 0 {
		exp = 0
	}
	return new(big.Int).Lsh(big.NewInt(1), uint(exp)), nil
}

func (c *Calc) echo(ctx context.Context, args []value.Value) (value.Value, error) {
	return argString(args[0]), nil
}

func (c *Calc) invert(ctx context.Context, args []value.Value) (value.Value, error) {
	flag, _ := args[0].(bool)
	return !flag, nil
}

func (c *Calc) characters(ctx context.Context, args []value.Value) (value.Value, error) {
	text := argString(args[0])
	chars := make(value.List, 0, len(text))
	for _, r := range text {
		chars = append(chars, string(r))
	}
	return chars, nil
}

func (c *Calc) statistics(ctx context.Context, args []value.Value) (value.Value, error) {
	values := args[0].(value.List)

	stats := value.NewObject()
	stats.Set("count", int64(len(values)))

	if len(values) == 0 {
		stats.Set("sum", 0.0)
		stats.Set("average", 0.0)
		return stats, nil
	}

	total := 0.0
	min := values[0].(float64)
	max := min
	for _, v := range values {
		f := v.(float64)
		total += f
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
	}
	stats.Set("sum", total)
	stats.Set("average", total/float64(len(values)))
	stats.Set("minimum", min)
	stats.Set("maximum", max)
	return stats, nil
}

// manifest returns its text through a resource so its closer runs after
// encoding, the way handlers streaming from files or rows would.
func (c *Calc) manifest(ctx context.Context, args []value.Value) (value.Value, error) {
	reader := io.NopCloser(strings.NewReader(manifestText))
	return value.NewResource(manifestText, reader), nil
}

func (c *Calc) ping(ctx context.Context, args []value.Value) (value.Value, error) {
	return nil, nil
}

func (c *Calc) uptime(ctx context.Context, args []value.Value) (value.Value, error) {
	return c.clock.Now().Sub(c.start).Milliseconds(), nil
}

func (c *Calc) whoami(ctx context.Context, args []value.Value) (value.Value, error) {
	return c.Security().Username, nil
}

func (c *Calc) isAdmin(ctx context.Context, args []value.Value) (value.Value, error) {
	return c.Security().Roles.Contains("admin"), nil
}

const manifestText = "calc: arithmetic and introspection example contract"

// Argument accessors. The coercer hands a nil for an absent scalar; these
// fold that into the zero value.

func argInt(v value.Value) int64 {
	switch n := v.(type) {
	case int32:
		return int64(n)
	case int64:
		return n
	default:
		return 0
	}
}

func argString(v value.Value) string {
	s, _ := v.(string)
	return s
}

func argDecimal(v value.Value) decimal.Decimal {
	d, _ := v.(decimal.Decimal)
	return d
}
