package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/mcp-google-workspace/internal/instrumentation"
	"github.com/teemow/mcp-google-workspace/internal/logging"
)

// State is a step in the life of an invocation.
type State string

// Invocation states.
const (
	StateReceived  State = "RECEIVED"
	StateValidated State = "VALIDATED"
	StateExecuting State = "EXECUTING"
	StateSucceeded State = "SUCCEEDED"
	StateFailed    State = "FAILED"
)

// DefaultCallTimeout bounds a single attempt.
const DefaultCallTimeout = 30 * time.Second

// Invocation is a request to run a command. Args holds raw values: decoded
// JSON from MCP clients or strings from the command line.
type Invocation struct {
	Command string
	Args    map[string]any
}

// Response is the outcome of Dispatch. Exactly one of Payload and Error is
// meaningful, depending on Success.
type Response struct {
	Success  bool             `json:"success"`
	Command  string           `json:"command"`
	State    State            `json:"state"`
	Payload  any              `json:"payload,omitempty"`
	Error    *ErrorDescriptor `json:"error,omitempty"`
	Attempts int              `json:"attempts"`
}

// Observer is told about every state transition.
type Observer func(command string, from, to State)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRetryPolicy replaces DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(d *Dispatcher) { d.policy = p }
}

// WithCallTimeout sets the per-attempt timeout. Zero disables it.
func WithCallTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.callTimeout = timeout }
}

// WithObserver registers a state transition observer.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) { d.observer = o }
}

// WithMetrics records command, attempt and retry metrics.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithAuditLogger writes one audit record per dispatch.
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(d *Dispatcher) { d.audit = al }
}

// WithLogger replaces slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// Dispatcher runs invocations against a Registry. It holds no per-call
// state and is safe for concurrent use.
type Dispatcher struct {
	registry    *Registry
	policy      RetryPolicy
	callTimeout time.Duration
	observer    Observer
	metrics     *instrumentation.Metrics
	audit       *instrumentation.AuditLogger
	logger      *slog.Logger

	onRetry func(attempt int, err error, next time.Duration)
}

// NewDispatcher creates a Dispatcher for registry.
func NewDispatcher(registry *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:    registry,
		policy:      DefaultRetryPolicy,
		callTimeout: DefaultCallTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the registry commands are resolved from.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// invocation carries the per-call bookkeeping of one Dispatch.
type invocation struct {
	resp    *Response
	service string
	logger  *slog.Logger
	span    trace.Span
	record  *instrumentation.CommandRecord
}

// Dispatch runs inv and always returns a Response. Vendor errors are
// normalized; retryable failures are retried under the configured policy.
func (d *Dispatcher) Dispatch(ctx context.Context, inv Invocation) *Response {
	ctx, span := instrumentation.StartCommandSpan(ctx, inv.Command)
	defer span.End()

	call := &invocation{
		resp:   &Response{Command: inv.Command},
		logger: logging.WithCommand(d.logger, inv.Command),
		span:   span,
		record: instrumentation.NewCommandRecord(inv.Command, "").
			WithResource(resourceID(inv.Args)).
			WithSpanContext(ctx),
	}
	d.transition(call, StateReceived)

	desc, err := d.registry.Resolve(inv.Command)
	if err != nil {
		return d.fail(ctx, call, err)
	}
	call.service = desc.Service
	call.record.Service = desc.Service
	call.logger = logging.WithService(call.logger, desc.Service)
	span.SetAttributes(instrumentation.NewSpanAttributeBuilder().
		WithService(desc.Service).
		WithResource(call.record.ResourceID).
		WithReadOnly(desc.ReadOnly).
		Build()...)

	args, err := desc.Validate(inv.Args)
	if err != nil {
		return d.fail(ctx, call, err)
	}
	d.transition(call, StateValidated)

	d.transition(call, StateExecuting)
	payload, err := d.execute(ctx, call, desc, args)
	if err != nil {
		return d.fail(ctx, call, err)
	}

	call.resp.Success = true
	call.resp.Payload = payload
	d.transition(call, StateSucceeded)
	instrumentation.SetSpanSuccess(span)
	d.finish(ctx, call, "", nil)
	return call.resp
}

// execute runs the handler until it succeeds, fails permanently or the
// attempt budget is spent.
func (d *Dispatcher) execute(ctx context.Context, call *invocation, desc *Descriptor, args Args) (any, error) {
	op := func() (any, error) {
		call.resp.Attempts++
		payload, err := d.attempt(ctx, desc, args, call.resp.Attempts)
		if err == nil {
			return payload, nil
		}
		err = NormalizeError(err)
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		if !IsRetryable(err) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	notify := func(err error, next time.Duration) {
		d.metrics.RecordRetry(ctx, desc.Name)
		instrumentation.AddSpanEvent(call.span, "retry",
			attribute.Int(instrumentation.SpanAttrAttempt, call.resp.Attempts))
		call.logger.Warn("retrying command",
			logging.Attempt(call.resp.Attempts),
			slog.Duration("backoff", next),
			logging.Err(err))
		if d.onRetry != nil {
			d.onRetry(call.resp.Attempts, err, next)
		}
	}

	payload, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(d.policy.backOff()),
		backoff.WithMaxTries(d.policy.attempts()),
		backoff.WithNotify(notify),
	)
	if err == nil {
		return payload, nil
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	if cerr := ctx.Err(); cerr != nil {
		return nil, fmt.Errorf("command aborted after %d attempt(s): %w (%v)", call.resp.Attempts, context.Canceled, cerr)
	}
	return nil, err
}

// attempt makes one handler call under the per-attempt timeout. A panic in
// the handler becomes an error.
func (d *Dispatcher) attempt(ctx context.Context, desc *Descriptor, args Args, n int) (payload any, err error) {
	actx := ctx
	timeout := d.callTimeout
	if desc.Timeout != 0 {
		timeout = desc.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	actx, span := instrumentation.StartGoogleAPISpan(actx, desc.Service, desc.Name, n)
	defer span.End()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("command handler panicked",
				logging.Command(desc.Name),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			err = fmt.Errorf("command %s panicked: %v", desc.Name, r)
			payload = nil
		}

		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		d.metrics.RecordGoogleAPIOperation(ctx, desc.Service, desc.Name, status, time.Since(start))
	}()

	return desc.Handler.Handle(actx, args)
}

func (d *Dispatcher) transition(call *invocation, to State) {
	from := call.resp.State
	call.resp.State = to
	call.logger.Debug("command state changed",
		slog.String("from", string(from)),
		logging.State(string(to)))
	if d.observer != nil {
		d.observer(call.resp.Command, from, to)
	}
}

func (d *Dispatcher) fail(ctx context.Context, call *invocation, err error) *Response {
	desc := Describe(err)
	call.resp.Success = false
	call.resp.Payload = nil
	call.resp.Error = desc
	d.transition(call, StateFailed)

	instrumentation.SetSpanError(call.span, err)
	call.span.SetAttributes(attribute.String(instrumentation.SpanAttrErrorKind, string(desc.Kind)))

	attrs := []any{logging.Kind(string(desc.Kind)), logging.Attempt(call.resp.Attempts), logging.Err(err)}
	if desc.Kind == KindInternal {
		call.logger.Error("command failed", attrs...)
	} else {
		call.logger.Info("command failed", attrs...)
	}

	d.finish(ctx, call, string(desc.Kind), err)
	return call.resp
}

func (d *Dispatcher) finish(ctx context.Context, call *invocation, kind string, err error) {
	call.record.Complete(string(call.resp.State), call.resp.Attempts, kind, err)
	call.span.SetAttributes(attribute.String(instrumentation.SpanAttrState, string(call.resp.State)))
	d.metrics.RecordCommandInvocation(ctx, call.resp.Command, call.service, call.record.Status(), kind, call.record.Duration)
	d.audit.LogCommand(ctx, call.record)
	call.logger.Debug("command finished",
		logging.Status(call.record.Status()),
		logging.Attempt(call.resp.Attempts),
		logging.Duration(call.record.Duration))
}

// resourceIDParams are checked in order to label audit records.
var resourceIDParams = []string{"spreadsheet_id", "document_id", "presentation_id", "file_id"}

func resourceID(args map[string]any) string {
	for _, name := range resourceIDParams {
		if s, ok := args[name].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
