// Package app contains the dispatch engine: the operation registry,
// descriptor builder, argument coercer, invoker, and the dispatcher that
// wires them together per request.
package app

import (
	"sort"

	"github.com/artpar/rpcgate/domain/fault"
	"github.com/artpar/rpcgate/domain/operation"
)

// Registry indexes a contract's operations by name. It is built once at
// startup, is read-only afterwards, and is shared by all concurrent
// requests without locking.
type Registry struct {
	ops   map[string]operation.Operation
	names []string // ascending, for deterministic enumeration
}

// NewRegistry builds a registry from a contract's operation surface. Two
// operations sharing a name collapse to one entry, last wins; that is a
// contract-authoring constraint, not a runtime check. Every declared
// parameter type is validated against the coercion table here so that an
// unsupported schema fails at startup instead of per request.
func NewRegistry(ops []operation.Operation) (*Registry, error) {
	r := &Registry{ops: make(map[string]operation.Operation, len(ops))}

	for _, op := range ops {
		if op.Name == "" {
			return nil, fault.Configuration("contract declares an operation with no name")
		}
		for _, p := range op.Params {
			if _, ok := parsers[p.Type]; !ok {
				return nil, fault.Configuration("operation %q parameter %q declares unsupported type %s", op.Name, p.Name, p.Type)
			}
		}
		r.ops[op.Name] = op
	}

	r.names = make([]string, 0, len(r.ops))
	for name := range r.ops {
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)

	return r, nil
}

// Lookup resolves an operation by exact, case-sensitive name.
func (r *Registry) Lookup(name string) (operation.Operation, error) {
	op, ok := r.ops[name]
	if !ok {
		return operation.Operation{}, fault.NotFound("operation %q not found", name)
	}
	return op, nil
}

// Names returns the registered operation names in ascending order.
func (r *Registry) Names() []string { return r.names }

// Len returns the number of registered operations.
func (r *Registry) Len() int { return len(r.ops) }
