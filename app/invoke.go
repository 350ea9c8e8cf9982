package app

import (
	"context"
	"fmt"

	"github.com/artpar/rpcgate/domain/contract"
	"github.com/artpar/rpcgate/domain/fault"
	"github.com/artpar/rpcgate/domain/operation"
	"github.com/artpar/rpcgate/domain/value"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

// Identity is a transport-authenticated caller. The transport owns how the
// identity was established; the engine only forwards role queries to it.
type Identity struct {
	Username string
	InRole   contract.RolePredicate
}

// Invoker executes operations against per-request contract instances. No
// pooling: every request gets a fresh instance and its own security
// context, both discarded when the call returns.
type Invoker struct {
	factory contract.Factory
	logger  zerolog.Logger
}

// NewInvoker creates an invoker over a contract factory.
func NewInvoker(factory contract.Factory, logger zerolog.Logger) *Invoker {
	return &Invoker{factory: factory, logger: logger}
}

// Invoke constructs a contract instance, injects the security context, and
// executes the named operation with the coerced argument list. Any failure
// raised by the operation body, panics included, is re-classified as an
// internal fault; the cause goes to the log, not to the caller.
func (inv *Invoker) Invoke(ctx context.Context, name string, args []value.Value, sc contract.SecurityContext) (result value.Value, err error) {
	svc := inv.factory()
	svc.SetSecurity(sc)

	var handler operation.Handler
	for _, op := range svc.Operations() {
		if op.Name == name {
			handler = op.Handler
		}
	}
	if handler == nil {
		return nil, fault.NotFound("operation %q not found", name)
	}

	defer func() {
		if r := recover(); r != nil {
			inv.logger.Error().Str("operation", name).Interface("panic", r).Msg("operation panicked")
			err = fault.Internal(fmt.Errorf("panic: %v", r))
		}
	}()

	result, herr := handler(ctx, args)
	if herr != nil {
		inv.logger.Warn().Str("operation", name).Err(herr).Msg("operation failed")
		return nil, fault.Internal(herr)
	}
	return result, nil
}

// securityContext assembles the per-request security context. The locale is
// always set; identity fields stay zero for anonymous callers.
func securityContext(locale language.Tag, id *Identity) contract.SecurityContext {
	sc := contract.SecurityContext{Locale: locale}
	if id != nil {
		sc.Username = id.Username
		sc.Roles = contract.NewRoleSet(id.InRole)
	}
	return sc
}
