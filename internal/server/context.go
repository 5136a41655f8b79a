package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/mcp-google-workspace/internal/config"
	"github.com/teemow/mcp-google-workspace/internal/dispatch"
	"github.com/teemow/mcp-google-workspace/internal/google"
	"github.com/teemow/mcp-google-workspace/internal/instrumentation"
	"github.com/teemow/mcp-google-workspace/internal/logging"
)

// UserAgent is sent with every Google API request.
const UserAgent = "mcp-google-workspace"

// ServerContext owns the long-lived pieces shared by every command: the
// credential store, the client facade, the command registry and the
// dispatcher.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	config     config.Config
	store      *google.CredentialStore
	facade     *google.Facade
	registry   *dispatch.Registry
	dispatcher *dispatch.Dispatcher
	provider   *instrumentation.Provider
	logger     *slog.Logger

	tokenProvider google.TokenProvider
	facadeOpts    []google.FacadeOption
	storeOpts     []google.StoreOption
	dispatchOpts  []dispatch.Option

	mu                 sync.RWMutex
	currentSpreadsheet string
	shutdown           bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithInstrumentation wires metrics, tracing and audit logging.
func WithInstrumentation(p *instrumentation.Provider) Option {
	return func(sc *ServerContext) { sc.provider = p }
}

// WithTokenProvider makes the facade use p instead of the credential store.
func WithTokenProvider(p google.TokenProvider) Option {
	return func(sc *ServerContext) { sc.tokenProvider = p }
}

// WithFacadeOptions passes options to the client facade.
func WithFacadeOptions(opts ...google.FacadeOption) Option {
	return func(sc *ServerContext) { sc.facadeOpts = append(sc.facadeOpts, opts...) }
}

// WithStoreOptions passes options to the credential store.
func WithStoreOptions(opts ...google.StoreOption) Option {
	return func(sc *ServerContext) { sc.storeOpts = append(sc.storeOpts, opts...) }
}

// WithDispatchOptions passes options to the dispatcher. They are applied
// after the ones derived from the configuration.
func WithDispatchOptions(opts ...dispatch.Option) Option {
	return func(sc *ServerContext) { sc.dispatchOpts = append(sc.dispatchOpts, opts...) }
}

// WithLogger sets the logger used by the dispatcher.
func WithLogger(l *slog.Logger) Option {
	return func(sc *ServerContext) { sc.logger = l }
}

// NewServerContext builds the credential store, facade, registry and
// dispatcher from cfg. No credentials are read until a command needs them.
func NewServerContext(ctx context.Context, cfg config.Config, opts ...Option) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		config:   cfg,
		registry: dispatch.NewRegistry(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(sc)
	}

	tokenPath, err := config.ExpandHome(cfg.TokenPath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to resolve token path: %w", err)
	}

	storeOpts := sc.storeOpts
	if metrics := sc.Metrics(); metrics != nil {
		storeOpts = append([]google.StoreOption{google.WithRefreshRecorder(metrics)}, storeOpts...)
	}
	sc.store = google.NewCredentialStore(cfg.ClientSecretPath, tokenPath, storeOpts...)

	provider := sc.tokenProvider
	if provider == nil {
		provider = sc.store
	}
	sc.facade = google.NewFacade(provider,
		append([]google.FacadeOption{google.WithUserAgent(UserAgent)}, sc.facadeOpts...)...)

	policy := dispatch.DefaultRetryPolicy
	if cfg.RetryMaxAttempts > 0 {
		policy.MaxAttempts = cfg.RetryMaxAttempts
	}
	if cfg.RetryInitialInterval > 0 {
		policy.InitialInterval = cfg.RetryInitialInterval
	}

	dispatchOpts := []dispatch.Option{
		dispatch.WithRetryPolicy(policy),
		dispatch.WithLogger(sc.logger),
		dispatch.WithMetrics(sc.Metrics()),
		dispatch.WithAuditLogger(sc.AuditLogger()),
	}
	if cfg.CallTimeout > 0 {
		dispatchOpts = append(dispatchOpts, dispatch.WithCallTimeout(cfg.CallTimeout))
	}
	sc.dispatcher = dispatch.NewDispatcher(sc.registry, append(dispatchOpts, sc.dispatchOpts...)...)

	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the configuration the context was built from.
func (sc *ServerContext) Config() config.Config {
	return sc.config
}

// FolderID is the Drive folder commands list from and create into.
func (sc *ServerContext) FolderID() string {
	return sc.config.FolderID
}

// CredentialStore returns the process-wide credential store.
func (sc *ServerContext) CredentialStore() *google.CredentialStore {
	return sc.store
}

// Facade returns the Google API client facade.
func (sc *ServerContext) Facade() *google.Facade {
	return sc.facade
}

// Registry returns the command registry.
func (sc *ServerContext) Registry() *dispatch.Registry {
	return sc.registry
}

// Dispatcher returns the command dispatcher.
func (sc *ServerContext) Dispatcher() *dispatch.Dispatcher {
	return sc.dispatcher
}

// Provider returns the instrumentation provider, if any.
func (sc *ServerContext) Provider() *instrumentation.Provider {
	return sc.provider
}

// Metrics returns the metrics recorder, or nil without instrumentation.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	if sc.provider == nil {
		return nil
	}
	return sc.provider.Metrics()
}

// AuditLogger returns the audit logger, or nil without instrumentation.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	if sc.provider == nil {
		return nil
	}
	return sc.provider.AuditLogger()
}

// CurrentSpreadsheet returns the spreadsheet most recently created, copied or
// successfully addressed by id.
func (sc *ServerContext) CurrentSpreadsheet() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.currentSpreadsheet
}

// SetCurrentSpreadsheet records id as the current spreadsheet.
func (sc *ServerContext) SetCurrentSpreadsheet(id string) {
	if id == "" {
		return
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.currentSpreadsheet != id {
		sc.logger.Debug("current spreadsheet changed", logging.SpreadsheetID(id))
	}
	sc.currentSpreadsheet = id
}

// ResolveSpreadsheetID returns explicit, or the current spreadsheet when
// explicit is empty. It does not change the current spreadsheet.
func (sc *ServerContext) ResolveSpreadsheetID(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if id := sc.CurrentSpreadsheet(); id != "" {
		return id, nil
	}
	return "", &dispatch.InvalidArgumentError{
		Param:    "spreadsheet_id",
		Expected: "a spreadsheet id",
		Reason:   "no spreadsheet_id given and no current spreadsheet set",
	}
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
