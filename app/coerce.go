package app

import (
	"math/big"
	"net/url"
	"strconv"
	"strings"

	"github.com/artpar/rpcgate/domain/fault"
	"github.com/artpar/rpcgate/domain/operation"
	"github.com/artpar/rpcgate/domain/value"
	"github.com/shopspring/decimal"
)

// parseFunc coerces one supplied wire string into a typed argument.
type parseFunc func(raw string) (value.Value, error)

// parsers is the explicit coercion table from declared scalar type to
// parser. The registry checks membership at startup.
var parsers = map[operation.ScalarType]parseFunc{
	operation.String: func(raw string) (value.Value, error) {
		return raw, nil
	},
	operation.Byte:       signedParser(8),
	operation.Short:      signedParser(16),
	operation.Int:        signedParser(32),
	operation.Long:       signedParser(64),
	operation.Float:      floatParser(32),
	operation.Double:     floatParser(64),
	operation.BigInteger: parseBigInteger,
	operation.BigDecimal: parseBigDecimal,
	operation.Boolean:    parseBoolean,
}

func signedParser(bits int) parseFunc {
	return func(raw string) (value.Value, error) {
		n, err := strconv.ParseInt(raw, 10, bits)
		if err != nil {
			return nil, err
		}
		switch bits {
		case 8:
			return int8(n), nil
		case 16:
			return int16(n), nil
		case 32:
			return int32(n), nil
		default:
			return n, nil
		}
	}
}

func floatParser(bits int) parseFunc {
	return func(raw string) (value.Value, error) {
		f, err := strconv.ParseFloat(raw, bits)
		if err != nil {
			return nil, err
		}
		if bits == 32 {
			return float32(f), nil
		}
		return f, nil
	}
}

func parseBigInteger(raw string) (value.Value, error) {
	n, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fault.InvalidArgument("malformed integer %q", raw)
	}
	return n, nil
}

func parseBigDecimal(raw string) (value.Value, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// parseBoolean is deliberately lenient: a case-insensitive "true" is true,
// every other supplied value is false. It never fails; absent optional flags
// must not force operations to guard against parse faults.
func parseBoolean(raw string) (value.Value, error) {
	return strings.EqualFold(raw, "true"), nil
}

// CoerceArguments converts raw request parameters into a typed argument
// list, in declared parameter order. An absent scalar coerces to nil; an
// absent list coerces to an empty list, never nil.
func CoerceArguments(op operation.Operation, params url.Values) ([]value.Value, error) {
	args := make([]value.Value, len(op.Params))

	for i, p := range op.Params {
		supplied := params[p.Name]

		if p.List {
			list := make(value.List, 0, len(supplied))
			for _, raw := range supplied {
				v, err := coerceScalar(p, raw)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			}
			args[i] = list
			continue
		}

		if len(supplied) == 0 {
			// Absent optional parameter: nil short-circuits every scalar
			// rule, String included.
			args[i] = nil
			continue
		}

		v, err := coerceScalar(p, supplied[0])
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	return args, nil
}

func coerceScalar(p operation.Parameter, raw string) (value.Value, error) {
	parse, ok := parsers[p.Type]
	if !ok {
		return nil, fault.InvalidArgument("parameter %q declares unsupported type %s", p.Name, p.Type)
	}
	v, err := parse(raw)
	if err != nil {
		return nil, fault.Wrap(fault.KindInvalidArgument, err, "parameter %q", p.Name)
	}
	return v, nil
}
