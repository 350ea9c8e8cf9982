// Package value defines the container model produced by operations and
// consumed by the result encoder: a tagged graph of nulls, strings, numbers,
// booleans, lists, string-keyed objects, and closeable resources.
package value

import "io"

// Value is a node in a result graph. Supported node types:
//
//	nil                                  null
//	string                               string
//	bool                                 boolean
//	int/int8..int64, uint/uint8..uint64  number
//	float32, float64                     number
//	*big.Int, decimal.Decimal            number (arbitrary precision)
//	List, []any                          list
//	*Object                              object
//	*Resource                            resource wrapper
//
// Anything else is rejected by the encoder at serialization time.
type Value = any

// List is an ordered sequence of values.
type List []Value

// Entry is a single object member. Key is typed loosely so that a
// misbehaving adapter handing over a non-string key is caught by the
// encoder instead of being silently coerced.
type Entry struct {
	Key   Value
	Value Value
}

// Object is an ordered string-keyed container. Member order is the
// insertion order, which the encoder preserves on the wire.
type Object struct {
	entries []Entry
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{}
}

// FromEntries creates an object from pre-built entries. This is the adapter
// boundary: keys are not validated here, the encoder faults on non-string
// keys.
func FromEntries(entries []Entry) *Object {
	return &Object{entries: entries}
}

// Set adds or replaces a member, preserving the position of replaced keys.
func (o *Object) Set(key string, v Value) *Object {
	for i, e := range o.entries {
		if k, ok := e.Key.(string); ok && k == key {
			o.entries[i].Value = v
			return o
		}
	}
	o.entries = append(o.entries, Entry{Key: key, Value: v})
	return o
}

// Get returns the value for key.
func (o *Object) Get(key string) (Value, bool) {
	for _, e := range o.entries {
		if k, ok := e.Key.(string); ok && k == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Len returns the number of members.
func (o *Object) Len() int { return len(o.entries) }

// Entries returns the members in insertion order.
func (o *Object) Entries() []Entry { return o.entries }

// Resource couples a value with an externally-owned closeable handle. The
// handle is released by the encoder exactly once, after the wrapped value
// has been fully encoded, on every exit path.
type Resource struct {
	Value Value

	closer   io.Closer
	released bool
}

// NewResource wraps a value with a closer.
func NewResource(v Value, closer io.Closer) *Resource {
	return &Resource{Value: v, closer: closer}
}

// release closes the handle. Subsequent calls are no-ops.
func (r *Resource) release() error {
	if r.released || r.closer == nil {
		r.released = true
		return nil
	}
	r.released = true
	return r.closer.Close()
}
