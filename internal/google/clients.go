package google

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/teemow/mcp-google-workspace/internal/docs"
	"github.com/teemow/mcp-google-workspace/internal/drive"
	"github.com/teemow/mcp-google-workspace/internal/sheets"
	"github.com/teemow/mcp-google-workspace/internal/slides"
)

// Service names a Google Workspace API.
type Service string

// Supported services.
const (
	ServiceDrive  Service = "drive"
	ServiceSheets Service = "sheets"
	ServiceDocs   Service = "docs"
	ServiceSlides Service = "slides"
)

// Services lists every supported service.
var Services = []Service{ServiceDrive, ServiceSheets, ServiceDocs, ServiceSlides}

// ParseService converts a service name into a Service.
func ParseService(name string) (Service, error) {
	for _, s := range Services {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown Google service %q", name)
}

// serviceSlot memoizes one service handle and the credential version it was
// built from. The mutex serializes construction for that service only.
type serviceSlot struct {
	mu      sync.Mutex
	built   bool
	version uint64
	handle  any
	builds  int
}

// Facade hands out one authenticated client per service, built on first use
// and rebuilt when the provider's credentials change.
type Facade struct {
	provider  TokenProvider
	opts      []option.ClientOption
	userAgent string
	slots     map[Service]*serviceSlot
}

// FacadeOption configures a Facade.
type FacadeOption func(*Facade)

// WithClientOptions appends options passed to every service constructor.
func WithClientOptions(opts ...option.ClientOption) FacadeOption {
	return func(f *Facade) { f.opts = append(f.opts, opts...) }
}

// WithUserAgent sets the User-Agent sent with API requests.
func WithUserAgent(ua string) FacadeOption {
	return func(f *Facade) { f.userAgent = ua }
}

// NewFacade creates a Facade backed by provider.
func NewFacade(provider TokenProvider, opts ...FacadeOption) *Facade {
	f := &Facade{
		provider: provider,
		slots:    make(map[Service]*serviceSlot, len(Services)),
	}
	for _, s := range Services {
		f.slots[s] = &serviceSlot{}
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Client returns the memoized handle for svc: *drive.Client, *sheets.Client,
// *docs.Client or *slides.Client.
func (f *Facade) Client(ctx context.Context, svc Service) (any, error) {
	slot, ok := f.slots[svc]
	if !ok {
		return nil, fmt.Errorf("unknown Google service %q", svc)
	}

	creds, err := f.provider.Credentials(ctx)
	if err != nil {
		return nil, err
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.built && slot.version == creds.Version {
		return slot.handle, nil
	}

	handle, err := f.build(ctx, svc, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", svc, err)
	}
	slot.handle = handle
	slot.version = creds.Version
	slot.built = true
	slot.builds++
	return handle, nil
}

// Drive returns the Drive client.
func (f *Facade) Drive(ctx context.Context) (*drive.Client, error) {
	c, err := f.Client(ctx, ServiceDrive)
	if err != nil {
		return nil, err
	}
	return c.(*drive.Client), nil
}

// Sheets returns the Sheets client.
func (f *Facade) Sheets(ctx context.Context) (*sheets.Client, error) {
	c, err := f.Client(ctx, ServiceSheets)
	if err != nil {
		return nil, err
	}
	return c.(*sheets.Client), nil
}

// Docs returns the Docs client.
func (f *Facade) Docs(ctx context.Context) (*docs.Client, error) {
	c, err := f.Client(ctx, ServiceDocs)
	if err != nil {
		return nil, err
	}
	return c.(*docs.Client), nil
}

// Slides returns the Slides client.
func (f *Facade) Slides(ctx context.Context) (*slides.Client, error) {
	c, err := f.Client(ctx, ServiceSlides)
	if err != nil {
		return nil, err
	}
	return c.(*slides.Client), nil
}

func (f *Facade) build(ctx context.Context, svc Service, creds *Credentials) (any, error) {
	// The HTTP client outlives ctx, which only scopes this call.
	httpClient := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(creds.Token))

	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if f.userAgent != "" {
		opts = append(opts, option.WithUserAgent(f.userAgent))
	}
	opts = append(opts, f.opts...)

	switch svc {
	case ServiceDrive:
		return drive.NewClient(ctx, opts...)
	case ServiceSheets:
		return sheets.NewClient(ctx, opts...)
	case ServiceDocs:
		return docs.NewClient(ctx, opts...)
	case ServiceSlides:
		return slides.NewClient(ctx, opts...)
	default:
		return nil, fmt.Errorf("unknown Google service %q", svc)
	}
}

// builds reports how often svc has been constructed.
func (f *Facade) builds(svc Service) int {
	slot := f.slots[svc]
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return slot.builds
}
