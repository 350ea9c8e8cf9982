package app

import (
	"github.com/artpar/rpcgate/domain/value"
	"github.com/artpar/rpcgate/ports"
	"golang.org/x/text/language"
)

// DescriptorBuilder produces self-describing operation metadata for
// introspection requests. Descriptions come from an optional localized
// bundle; a missing bundle or key simply omits the field.
type DescriptorBuilder struct {
	registry *Registry
	bundle   ports.Bundle // may be nil
}

// NewDescriptorBuilder creates a descriptor builder over a registry.
func NewDescriptorBuilder(registry *Registry, bundle ports.Bundle) *DescriptorBuilder {
	return &DescriptorBuilder{registry: registry, bundle: bundle}
}

// Build returns the descriptor list for every registered operation, ordered
// by ascending operation name regardless of registration order.
func (b *DescriptorBuilder) Build(locale language.Tag) value.List {
	list := make(value.List, 0, b.registry.Len())

	for _, name := range b.registry.Names() {
		op, err := b.registry.Lookup(name)
		if err != nil {
			continue // unreachable: names come from the registry itself
		}

		desc := value.NewObject().Set("name", op.Name)
		if text, ok := b.lookup(locale, op.Name); ok {
			desc.Set("description", text)
		}

		params := make(value.List, 0, len(op.Params))
		for _, p := range op.Params {
			pd := value.NewObject().Set("name", p.Name)
			if text, ok := b.lookup(locale, op.Name+"_"+p.Name); ok {
				pd.Set("description", text)
			}
			pd.Set("type", string(p.Label()))
			params = append(params, pd)
		}
		desc.Set("parameters", params)

		if op.HasReturn() {
			desc.Set("returns", string(op.Returns))
		}

		list = append(list, desc)
	}

	return list
}

func (b *DescriptorBuilder) lookup(locale language.Tag, key string) (string, bool) {
	if b.bundle == nil {
		return "", false
	}
	return b.bundle.Lookup(locale, key)
}
