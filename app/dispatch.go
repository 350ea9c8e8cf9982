package app

import (
	"context"
	"io"
	"net/url"

	"github.com/artpar/rpcgate/domain/contract"
	"github.com/artpar/rpcgate/domain/value"
	"github.com/artpar/rpcgate/ports"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

// Request is a transport-neutral dispatch request. GET and POST are
// indistinguishable here; the transport's parameter extraction is the only
// difference and it happens before this point.
type Request struct {
	// Operation is the requested operation name. Empty means the caller
	// asked for the descriptor listing.
	Operation string

	// Params are the raw string-valued request parameters. Unknown extra
	// parameters are ignored.
	Params url.Values

	// Locale is the caller's locale, always set by the transport.
	Locale language.Tag

	// Identity is the authenticated caller, nil for anonymous requests.
	Identity *Identity
}

// Result is what the transport should write back. When HasBody is false the
// operation returned nothing: no body, no content type.
type Result struct {
	HasBody bool
	Body    value.Value
}

// Dispatcher resolves a request to an operation, coerces its arguments,
// invokes it, and hands the transport a value graph to encode. It holds
// only write-once state and is safe for concurrent use.
type Dispatcher struct {
	registry    *Registry
	descriptors *DescriptorBuilder
	invoker     *Invoker
	logger      zerolog.Logger
}

// NewDispatcher builds the registry from one factory-produced instance and
// wires the descriptor builder and invoker around it. A contract whose
// schema fails validation stops the service here, at startup.
func NewDispatcher(factory contract.Factory, bundle ports.Bundle, logger zerolog.Logger) (*Dispatcher, error) {
	registry, err := NewRegistry(factory().Operations())
	if err != nil {
		return nil, err
	}

	return &Dispatcher{
		registry:    registry,
		descriptors: NewDescriptorBuilder(registry, bundle),
		invoker:     NewInvoker(factory, logger),
		logger:      logger,
	}, nil
}

// Registry exposes the read-only operation registry.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Dispatch runs one request through resolve, coerce, and invoke. Encoding
// is left to the caller so that the content type can be committed before
// the first body byte.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Result, error) {
	if req.Operation == "" {
		return Result{HasBody: true, Body: d.descriptors.Build(req.Locale)}, nil
	}

	op, err := d.registry.Lookup(req.Operation)
	if err != nil {
		return Result{}, err
	}

	args, err := CoerceArguments(op, req.Params)
	if err != nil {
		return Result{}, err
	}

	result, err := d.invoker.Invoke(ctx, op.Name, args, securityContext(req.Locale, req.Identity))
	if err != nil {
		return Result{}, err
	}

	if !op.HasReturn() {
		return Result{}, nil
	}
	return Result{HasBody: true, Body: result}, nil
}

// Encode streams a result body onto w. A fault raised mid-stream leaves a
// truncated response; there is no partial-output recovery.
func (d *Dispatcher) Encode(w io.Writer, res Result) error {
	return value.NewEncoder(w).Encode(res.Body)
}
