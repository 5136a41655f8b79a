package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"google.golang.org/api/googleapi"

	"github.com/teemow/mcp-google-workspace/internal/google"
	"github.com/teemow/mcp-google-workspace/internal/instrumentation"
)

// fastRetries keeps retry tests quick and deterministic.
var fastRetries = RetryPolicy{
	MaxAttempts:         3,
	InitialInterval:     time.Millisecond,
	MaxInterval:         100 * time.Millisecond,
	Multiplier:          2,
	RandomizationFactor: 0,
}

type transitions struct {
	mu    sync.Mutex
	steps [][2]State
}

func (tr *transitions) observe(_ string, from, to State) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.steps = append(tr.steps, [2]State{from, to})
}

func (tr *transitions) get() [][2]State {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([][2]State(nil), tr.steps...)
}

func newTestDispatcher(t *testing.T, handler HandlerFunc, opts ...Option) (*Dispatcher, *transitions) {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, r.Register(Descriptor{
		Name:    "get_sheet_data",
		Service: "sheets",
		Params: []Param{
			String("range", Required()),
			String("spreadsheet_id"),
			Int("limit", Default(10)),
		},
		Handler: handler,
	}))
	r.Freeze()

	tr := &transitions{}
	opts = append([]Option{WithRetryPolicy(fastRetries), WithObserver(tr.observe)}, opts...)
	return NewDispatcher(r, opts...), tr
}

func TestDispatch_Success(t *testing.T) {
	var got Args
	d, tr := newTestDispatcher(t, func(_ context.Context, args Args) (any, error) {
		got = args
		return map[string]any{"range": "Sheet1!A1:B2"}, nil
	})

	resp := d.Dispatch(context.Background(), Invocation{
		Command: "get_sheet_data",
		Args:    map[string]any{"range": "A1:B2", "limit": "5"},
	})

	require.True(t, resp.Success)
	assert.Equal(t, StateSucceeded, resp.State)
	assert.Equal(t, 1, resp.Attempts)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]any{"range": "Sheet1!A1:B2"}, resp.Payload)
	assert.Equal(t, int64(5), got.Int("limit"))

	assert.Equal(t, [][2]State{
		{"", StateReceived},
		{StateReceived, StateValidated},
		{StateValidated, StateExecuting},
		{StateExecuting, StateSucceeded},
	}, tr.get())
}

func TestDispatch_UnknownCommand(t *testing.T) {
	d, tr := newTestDispatcher(t, func(context.Context, Args) (any, error) { return nil, nil })

	resp := d.Dispatch(context.Background(), Invocation{Command: "get_sheet_dta"})

	assert.False(t, resp.Success)
	assert.Equal(t, StateFailed, resp.State)
	require.NotNil(t, resp.Error)
	assert.Equal(t, KindUnknownCommand, resp.Error.Kind)
	assert.Zero(t, resp.Attempts)
	assert.Equal(t, [][2]State{{"", StateReceived}, {StateReceived, StateFailed}}, tr.get())
}

func TestDispatch_InvalidArgumentNeverCallsHandler(t *testing.T) {
	var calls atomic.Int32
	d, tr := newTestDispatcher(t, func(context.Context, Args) (any, error) {
		calls.Add(1)
		return nil, nil
	})

	resp := d.Dispatch(context.Background(), Invocation{
		Command: "get_sheet_data",
		Args:    map[string]any{"limit": 3},
	})

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, KindInvalidArgument, resp.Error.Kind)
	assert.Equal(t, "range", resp.Error.Param)
	assert.Zero(t, calls.Load())
	assert.Equal(t, [][2]State{{"", StateReceived}, {StateReceived, StateFailed}}, tr.get())
}

func TestDispatch_RetriesRateLimitThenFails(t *testing.T) {
	var calls atomic.Int32
	d, _ := newTestDispatcher(t, func(context.Context, Args) (any, error) {
		calls.Add(1)
		return nil, &googleapi.Error{Code: 429, Message: "Rate Limit Exceeded"}
	})

	var intervals []time.Duration
	d.onRetry = func(_ int, _ error, next time.Duration) { intervals = append(intervals, next) }

	resp := d.Dispatch(context.Background(), Invocation{Command: "get_sheet_data", Args: map[string]any{"range": "A1"}})

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 3, resp.Attempts)
	assert.Equal(t, StateFailed, resp.State)
	require.NotNil(t, resp.Error)
	assert.Equal(t, KindVendorAPI, resp.Error.Kind)
	assert.True(t, resp.Error.Retryable)
	assert.Equal(t, 429, resp.Error.StatusCode)

	require.Len(t, intervals, 2)
	assert.Less(t, intervals[0], intervals[1], "backoff must grow between attempts")
}

func TestDispatch_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	d, _ := newTestDispatcher(t, func(context.Context, Args) (any, error) {
		if calls.Add(1) == 1 {
			return nil, &googleapi.Error{Code: 503}
		}
		return "ok", nil
	})

	resp := d.Dispatch(context.Background(), Invocation{Command: "get_sheet_data", Args: map[string]any{"range": "A1"}})

	require.True(t, resp.Success)
	assert.Equal(t, 2, resp.Attempts)
	assert.Equal(t, "ok", resp.Payload)
}

func TestDispatch_PermanentVendorErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	d, _ := newTestDispatcher(t, func(context.Context, Args) (any, error) {
		calls.Add(1)
		return nil, &googleapi.Error{Code: 404, Message: "Requested entity was not found.", Errors: []googleapi.ErrorItem{{Reason: "notFound"}}}
	})

	resp := d.Dispatch(context.Background(), Invocation{Command: "get_sheet_data", Args: map[string]any{"range": "A1"}})

	assert.Equal(t, int32(1), calls.Load())
	require.NotNil(t, resp.Error)
	assert.Equal(t, KindVendorAPI, resp.Error.Kind)
	assert.False(t, resp.Error.Retryable)
	assert.Equal(t, 404, resp.Error.StatusCode)
	assert.Equal(t, "notFound", resp.Error.Reason)
}

func TestDispatch_PerAttemptTimeoutIsRetried(t *testing.T) {
	var calls atomic.Int32
	d, _ := newTestDispatcher(t, func(ctx context.Context, _ Args) (any, error) {
		if calls.Add(1) == 1 {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return "done", nil
	}, WithCallTimeout(20*time.Millisecond))

	resp := d.Dispatch(context.Background(), Invocation{Command: "get_sheet_data", Args: map[string]any{"range": "A1"}})

	require.True(t, resp.Success, "error: %+v", resp.Error)
	assert.Equal(t, 2, resp.Attempts)
}

func TestDispatch_TimeoutExhaustsAttempts(t *testing.T) {
	d, _ := newTestDispatcher(t, func(ctx context.Context, _ Args) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, WithCallTimeout(5*time.Millisecond))

	resp := d.Dispatch(context.Background(), Invocation{Command: "get_sheet_data", Args: map[string]any{"range": "A1"}})

	assert.Equal(t, 3, resp.Attempts)
	require.NotNil(t, resp.Error)
	assert.Equal(t, KindVendorAPI, resp.Error.Kind)
	assert.Equal(t, "timeout", resp.Error.Reason)
	assert.True(t, resp.Error.Retryable)
}

func TestDispatch_DescriptorTimeoutOverride(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Descriptor{
		Name:    "slow",
		Service: "batch",
		Timeout: -1,
		Handler: HandlerFunc(func(ctx context.Context, _ Args) (any, error) {
			if _, ok := ctx.Deadline(); ok {
				return nil, errors.New("unexpected deadline")
			}
			return "no deadline", nil
		}),
	}))
	d := NewDispatcher(reg, WithCallTimeout(5*time.Millisecond))

	resp := d.Dispatch(context.Background(), Invocation{Command: "slow"})
	require.True(t, resp.Success, "error: %+v", resp.Error)
	assert.Equal(t, "no deadline", resp.Payload)
}

func TestDispatch_CancellationStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	d, _ := newTestDispatcher(t, func(context.Context, Args) (any, error) {
		calls.Add(1)
		cancel()
		return nil, &googleapi.Error{Code: 503}
	})

	resp := d.Dispatch(ctx, Invocation{Command: "get_sheet_data", Args: map[string]any{"range": "A1"}})

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, StateFailed, resp.State)
	require.NotNil(t, resp.Error)
	assert.Equal(t, KindCanceled, resp.Error.Kind)
}

func TestDispatch_CanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d, _ := newTestDispatcher(t, func(ctx context.Context, _ Args) (any, error) {
		return nil, ctx.Err()
	})

	resp := d.Dispatch(ctx, Invocation{Command: "get_sheet_data", Args: map[string]any{"range": "A1"}})

	require.NotNil(t, resp.Error)
	assert.Equal(t, KindCanceled, resp.Error.Kind)
	assert.Equal(t, 1, resp.Attempts)
}

func TestDispatch_PanicBecomesInternalError(t *testing.T) {
	d, _ := newTestDispatcher(t, func(context.Context, Args) (any, error) {
		panic("nil map write")
	})

	resp := d.Dispatch(context.Background(), Invocation{Command: "get_sheet_data", Args: map[string]any{"range": "A1"}})

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, KindInternal, resp.Error.Kind)
	assert.Contains(t, resp.Error.Message, "nil map write")
	assert.Equal(t, 1, resp.Attempts)
}

func TestDispatch_AuthorizationRequired(t *testing.T) {
	d, _ := newTestDispatcher(t, func(context.Context, Args) (any, error) {
		return nil, &google.AuthorizationRequiredError{URL: "https://accounts.google.com/o/oauth2/auth", Reason: "no cached token"}
	})

	resp := d.Dispatch(context.Background(), Invocation{Command: "get_sheet_data", Args: map[string]any{"range": "A1"}})

	require.NotNil(t, resp.Error)
	assert.Equal(t, KindAuthorizationRequired, resp.Error.Kind)
	assert.Equal(t, "https://accounts.google.com/o/oauth2/auth", resp.Error.AuthURL)
	assert.Equal(t, 1, resp.Attempts)
}

func TestDispatch_HandlerInvalidArgument(t *testing.T) {
	d, tr := newTestDispatcher(t, func(context.Context, Args) (any, error) {
		return nil, &InvalidArgumentError{Param: "spreadsheet_id", Expected: "spreadsheet id", Reason: "no current spreadsheet"}
	})

	resp := d.Dispatch(context.Background(), Invocation{Command: "get_sheet_data", Args: map[string]any{"range": "A1"}})

	require.NotNil(t, resp.Error)
	assert.Equal(t, KindInvalidArgument, resp.Error.Kind)
	assert.Equal(t, "spreadsheet_id", resp.Error.Param)
	steps := tr.get()
	assert.Equal(t, [2]State{StateExecuting, StateFailed}, steps[len(steps)-1])
}

func TestDispatch_Concurrent(t *testing.T) {
	d, _ := newTestDispatcher(t, func(_ context.Context, args Args) (any, error) {
		return args.String("range"), nil
	})

	var wg sync.WaitGroup
	results := make([]*Response, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = d.Dispatch(context.Background(), Invocation{Command: "get_sheet_data", Args: map[string]any{"range": "A1"}})
		}(i)
	}
	wg.Wait()

	for _, resp := range results {
		require.True(t, resp.Success)
		assert.Equal(t, "A1", resp.Payload)
	}
}

func TestDispatch_AuditLog(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	audit := instrumentation.NewAuditLoggerWithConfig(logger, instrumentation.AuditLoggingConfig{Enabled: true, IncludeResourceIDs: true})

	d, _ := newTestDispatcher(t, func(context.Context, Args) (any, error) {
		return nil, errors.New("boom")
	}, WithAuditLogger(audit), WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))

	d.Dispatch(context.Background(), Invocation{Command: "get_sheet_data", Args: map[string]any{"range": "A1", "spreadsheet_id": "sheet-1"}})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "command_failed", line["msg"])
	assert.Equal(t, "get_sheet_data", line["command"])
	assert.Equal(t, "sheets", line["service"])
	assert.Equal(t, "sheet-1", line["resource_id"])
	assert.Equal(t, "internal", line["error_kind"])
	assert.Equal(t, "FAILED", line["state"])
}

func TestDispatch_CommandSpanAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})

	d, _ := newTestDispatcher(t, func(context.Context, Args) (any, error) {
		return "ok", nil
	})
	resp := d.Dispatch(context.Background(), Invocation{Command: "get_sheet_data", Args: map[string]any{"range": "A1", "spreadsheet_id": "sheet-1"}})
	require.True(t, resp.Success)

	var attrs map[string]any
	for _, span := range recorder.Ended() {
		if span.Name() != "command.get_sheet_data" {
			continue
		}
		attrs = make(map[string]any)
		for _, kv := range span.Attributes() {
			attrs[string(kv.Key)] = kv.Value.AsInterface()
		}
	}
	require.NotNil(t, attrs, "command span not recorded")
	assert.Equal(t, "get_sheet_data", attrs[instrumentation.SpanAttrCommand])
	assert.Equal(t, "sheets", attrs[instrumentation.SpanAttrService])
	assert.Equal(t, "sheet-1", attrs[instrumentation.SpanAttrResourceID])
	assert.Equal(t, false, attrs[instrumentation.SpanAttrReadOnly])
	assert.Equal(t, string(StateSucceeded), attrs[instrumentation.SpanAttrState])
}

func TestDispatch_FinishLog(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	d, _ := newTestDispatcher(t, func(context.Context, Args) (any, error) {
		return "ok", nil
	}, WithLogger(logger))
	d.Dispatch(context.Background(), Invocation{Command: "get_sheet_data", Args: map[string]any{"range": "A1"}})

	var finished map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		if entry["msg"] == "command finished" {
			finished = entry
		}
	}
	require.NotNil(t, finished)
	assert.Equal(t, "get_sheet_data", finished["command"])
	assert.Equal(t, "sheets", finished["service"])
	assert.Equal(t, instrumentation.StatusSuccess, finished["status"])
	assert.Contains(t, finished, "duration")
}

func TestResponseJSON(t *testing.T) {
	resp := &Response{
		Command: "list_files",
		State:   StateFailed,
		Error:   &ErrorDescriptor{Kind: KindVendorAPI, Message: "google API error 429", Retryable: true, StatusCode: 429},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": false,
		"command": "list_files",
		"state": "FAILED",
		"attempts": 0,
		"error": {"kind": "vendor_api", "message": "google API error 429", "retryable": true, "statusCode": 429}
	}`, string(data))
}
