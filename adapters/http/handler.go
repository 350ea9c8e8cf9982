// Package http provides the HTTP transport for operation dispatch.
package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/artpar/rpcgate/adapters/metrics"
	"github.com/artpar/rpcgate/app"
	"github.com/artpar/rpcgate/domain/audit"
	"github.com/artpar/rpcgate/domain/fault"
	"github.com/artpar/rpcgate/ports"
)

// contentTypeJSON is set on every response that carries a body.
const contentTypeJSON = "application/json; charset=UTF-8"

// Authenticator resolves request credentials into a caller identity.
// A nil identity with a nil error means the request is anonymous.
type Authenticator interface {
	Authenticate(r *http.Request) (*app.Identity, error)
}

// RPCHandler maps HTTP requests onto operation dispatches. The request
// path names the operation; the root path serves the descriptor listing.
// GET and POST behave identically: both contribute form parameters.
type RPCHandler struct {
	dispatcher *app.Dispatcher
	logger     zerolog.Logger

	auth     Authenticator
	metrics  *metrics.Collector
	recorder ports.AuditRecorder
	clock    ports.Clock
	idgen    ports.IDGenerator
}

// NewRPCHandler creates an HTTP dispatch handler.
func NewRPCHandler(dispatcher *app.Dispatcher, logger zerolog.Logger) *RPCHandler {
	return &RPCHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// SetAuthenticator enables credential resolution. Without one every
// request dispatches anonymously.
func (h *RPCHandler) SetAuthenticator(a Authenticator) {
	h.auth = a
}

// SetMetrics enables per-dispatch metrics.
func (h *RPCHandler) SetMetrics(m *metrics.Collector) {
	h.metrics = m
}

// SetAuditTrail enables audit event recording.
func (h *RPCHandler) SetAuditTrail(rec ports.AuditRecorder, clock ports.Clock, ids ports.IDGenerator) {
	h.recorder = rec
	h.clock = clock
	h.idgen = ids
}

// ServeHTTP handles one dispatch request.
func (h *RPCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	operation := strings.Trim(r.URL.Path, "/")
	locale := localeFromRequest(r)

	var identity *app.Identity
	if h.auth != nil {
		id, err := h.auth.Authenticate(r)
		if err != nil {
			if h.metrics != nil {
				h.metrics.AuthFailures.WithLabelValues("invalid_token").Inc()
			}
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			h.observe(r, operation, "unauthorized", "", locale, start)
			return
		}
		identity = id
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed request parameters", http.StatusBadRequest)
		h.observe(r, operation, fault.KindInvalidArgument.String(), username(identity), locale, start)
		return
	}

	res, err := h.dispatcher.Dispatch(r.Context(), app.Request{
		Operation: operation,
		Params:    r.Form,
		Locale:    locale,
		Identity:  identity,
	})
	if err != nil {
		http.Error(w, errorBody(err), statusForFault(err))
		h.observe(r, operation, fault.KindOf(err).String(), username(identity), locale, start)
		return
	}

	outcome := audit.OutcomeOK
	if operation == "" {
		outcome = audit.OutcomeDescriptors
	}

	if !res.HasBody {
		w.WriteHeader(http.StatusNoContent)
		h.observe(r, operation, outcome, username(identity), locale, start)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	if err := h.dispatcher.Encode(w, res); err != nil {
		// The status line is already committed; the response is truncated.
		h.logger.Error().
			Err(err).
			Str("operation", operation).
			Msg("response encoding failed mid-stream")
		outcome = fault.KindOf(err).String()
	}
	h.observe(r, operation, outcome, username(identity), locale, start)
}

// observe emits the request log line, metrics, and audit event.
func (h *RPCHandler) observe(r *http.Request, operation, outcome, user string, locale language.Tag, start time.Time) {
	latency := time.Since(start)

	event := h.logger.Info()
	if outcome != audit.OutcomeOK && outcome != audit.OutcomeDescriptors {
		event = h.logger.Warn()
	}
	event.
		Str("operation", operation).
		Str("outcome", outcome).
		Str("user", user).
		Str("locale", locale.String()).
		Dur("latency", latency).
		Str("remote_ip", extractIP(r)).
		Str("request_id", middleware.GetReqID(r.Context())).
		Msg("dispatch")

	if h.metrics != nil {
		h.metrics.RequestsTotal.WithLabelValues(metricOperation(operation), outcome).Inc()
		h.metrics.RequestDuration.WithLabelValues(metricOperation(operation)).Observe(latency.Seconds())
		if outcome == audit.OutcomeDescriptors {
			h.metrics.DescriptorRequests.Inc()
		}
	}

	if h.recorder != nil {
		h.recorder.Record(audit.Event{
			ID:        h.idgen.New(),
			Operation: operation,
			Outcome:   outcome,
			Username:  user,
			Locale:    locale.String(),
			LatencyMs: latency.Milliseconds(),
			RemoteIP:  extractIP(r),
			Timestamp: h.clock.Now(),
		})
	}
}

// metricOperation gives the descriptor listing a non-empty label value.
func metricOperation(operation string) string {
	if operation == "" {
		return "_descriptors"
	}
	return operation
}

func username(id *app.Identity) string {
	if id == nil {
		return ""
	}
	return id.Username
}

// errorBody picks the plain-text body for a failed dispatch. NotFound and
// InvalidArgument messages are the engine's own and safe to echo; anything
// internal carries an operation-supplied cause that must stay in the logs,
// so the caller sees only a generic line.
func errorBody(err error) string {
	switch fault.KindOf(err) {
	case fault.KindNotFound, fault.KindInvalidArgument:
		return err.Error()
	default:
		return "internal error"
	}
}

// statusForFault maps fault kinds onto HTTP status codes.
func statusForFault(err error) int {
	switch fault.KindOf(err) {
	case fault.KindNotFound:
		return http.StatusNotFound
	case fault.KindInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// localeFromRequest picks the caller's preferred locale from the
// Accept-Language header, defaulting to English.
func localeFromRequest(r *http.Request) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return language.English
	}
	return tags[0]
}

// extractIP returns the originating client IP.
func extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
