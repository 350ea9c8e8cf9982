package value

import (
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/artpar/rpcgate/domain/fault"
	"github.com/shopspring/decimal"
)

// Encoder writes a value graph as indented JSON text. It streams depth-first
// onto the underlying writer, so a fault raised mid-graph can leave a
// truncated document behind; callers that need an intact-or-nothing body
// must buffer.
type Encoder struct {
	w io.Writer
}

// NewEncoder creates an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode serializes v at depth zero.
func (e *Encoder) Encode(v Value) error {
	return e.encode(v, 0)
}

func (e *Encoder) encode(v Value, depth int) error {
	switch v := v.(type) {
	case nil:
		return e.writeString("null")
	case string:
		return e.encodeString(v)
	case bool:
		return e.writeString(strconv.FormatBool(v))
	case int:
		return e.writeString(strconv.FormatInt(int64(v), 10))
	case int8:
		return e.writeString(strconv.FormatInt(int64(v), 10))
	case int16:
		return e.writeString(strconv.FormatInt(int64(v), 10))
	case int32:
		return e.writeString(strconv.FormatInt(int64(v), 10))
	case int64:
		return e.writeString(strconv.FormatInt(v, 10))
	case uint:
		return e.writeString(strconv.FormatUint(uint64(v), 10))
	case uint8:
		return e.writeString(strconv.FormatUint(uint64(v), 10))
	case uint16:
		return e.writeString(strconv.FormatUint(uint64(v), 10))
	case uint32:
		return e.writeString(strconv.FormatUint(uint64(v), 10))
	case uint64:
		return e.writeString(strconv.FormatUint(v, 10))
	case float32:
		return e.writeString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	case float64:
		return e.writeString(strconv.FormatFloat(v, 'g', -1, 64))
	case *big.Int:
		return e.writeString(v.String())
	case decimal.Decimal:
		return e.writeString(v.String())
	case List:
		return e.encodeList(v, depth)
	case []any:
		return e.encodeList(v, depth)
	case *Object:
		return e.encodeObject(v, depth)
	case *Resource:
		return e.encodeResource(v, depth)
	default:
		return fault.Encoding("invalid value type %T", v)
	}
}

// encodeString writes a quoted string, escaping the quote, backslash,
// forward slash, and the control characters \b \f \n \r \t. The forward
// slash escape is a wire-compatibility requirement, not an accident. All
// other bytes pass through verbatim.
func (e *Encoder) encodeString(s string) error {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\\', '/':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return e.writeString(b.String())
}

// encodeList writes [ followed by one element per line at the increased
// depth. An empty list still emits the newline and indent before the
// closing bracket; consumers depend on that exact form.
func (e *Encoder) encodeList(list []Value, depth int) error {
	if err := e.writeString("["); err != nil {
		return err
	}

	depth++
	for i, element := range list {
		if i > 0 {
			if err := e.writeString(","); err != nil {
				return err
			}
		}
		if err := e.newlineIndent(depth); err != nil {
			return err
		}
		if err := e.encode(element, depth); err != nil {
			return err
		}
	}
	depth--

	if err := e.newlineIndent(depth); err != nil {
		return err
	}
	return e.writeString("]")
}

func (e *Encoder) encodeObject(obj *Object, depth int) error {
	if err := e.writeString("{"); err != nil {
		return err
	}

	depth++
	for i, entry := range obj.Entries() {
		if i > 0 {
			if err := e.writeString(","); err != nil {
				return err
			}
		}
		if err := e.newlineIndent(depth); err != nil {
			return err
		}

		key, ok := entry.Key.(string)
		if !ok {
			return fault.Encoding("invalid key type %T", entry.Key)
		}
		if err := e.encodeString(key); err != nil {
			return err
		}
		if err := e.writeString(": "); err != nil {
			return err
		}
		if err := e.encode(entry.Value, depth); err != nil {
			return err
		}
	}
	depth--

	if err := e.newlineIndent(depth); err != nil {
		return err
	}
	return e.writeString("}")
}

// encodeResource encodes the wrapped value and releases the handle exactly
// once, whether encoding succeeded or not. A release failure surfaces as an
// encoding fault even when the value itself was written cleanly.
func (e *Encoder) encodeResource(r *Resource, depth int) (err error) {
	defer func() {
		if cerr := r.release(); cerr != nil && err == nil {
			err = fault.Wrap(fault.KindEncoding, cerr, "release resource")
		}
	}()
	return e.encode(r.Value, depth)
}

func (e *Encoder) newlineIndent(depth int) error {
	if err := e.writeString("\n"); err != nil {
		return err
	}
	for i := 0; i < depth; i++ {
		if err := e.writeString("  "); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) writeString(s string) error {
	_, err := io.WriteString(e.w, s)
	return err
}
