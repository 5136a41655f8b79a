package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Handler executes one command with validated arguments.
type Handler interface {
	Handle(ctx context.Context, args Args) (any, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, args Args) (any, error)

// Handle calls f(ctx, args).
func (f HandlerFunc) Handle(ctx context.Context, args Args) (any, error) {
	return f(ctx, args)
}

// Descriptor describes a registered command.
type Descriptor struct {
	Name        string
	Service     string
	Description string
	Params      []Param
	Handler     Handler
	// ReadOnly marks commands that never modify documents.
	ReadOnly bool
	// Timeout overrides the dispatcher's per-attempt timeout when non-zero.
	// A negative value runs the handler without one.
	Timeout time.Duration
}

// Param returns the declared parameter called name.
func (d *Descriptor) Param(name string) (Param, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Validate checks raw against the parameter schema. Required parameters
// must be present and non-null, defaults fill omitted optional ones and
// unknown names are rejected.
func (d *Descriptor) Validate(raw map[string]any) (Args, error) {
	for name := range raw {
		if _, ok := d.Param(name); !ok {
			return nil, &InvalidArgumentError{Param: name, Expected: "no such parameter", Reason: fmt.Sprintf("%s does not accept %q", d.Name, name)}
		}
	}

	args := make(Args, len(d.Params))
	for _, p := range d.Params {
		v, ok := raw[p.Name]
		if !ok || v == nil {
			switch {
			case p.Required:
				return nil, &InvalidArgumentError{Param: p.Name, Expected: p.Expected(), Reason: "missing required parameter"}
			case p.Default != nil:
				v = p.Default
			default:
				continue
			}
		}
		coerced, err := p.coerce(v)
		if err != nil {
			return nil, err
		}
		if s, ok := coerced.(string); ok && p.Normalize != nil {
			coerced = p.Normalize(s)
		}
		args[p.Name] = coerced
	}
	return args, nil
}

func (d *Descriptor) check() error {
	if d.Name == "" {
		return errors.New("command name is empty")
	}
	if d.Handler == nil {
		return fmt.Errorf("command %q has no handler", d.Name)
	}
	seen := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		if p.Name == "" {
			return fmt.Errorf("command %q declares a parameter without a name", d.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("command %q declares parameter %q twice", d.Name, p.Name)
		}
		seen[p.Name] = true
		if p.Type == TypeEnum && len(p.Enum) == 0 {
			return fmt.Errorf("command %q: enum parameter %q has no values", d.Name, p.Name)
		}
		if p.Default != nil {
			if _, err := p.coerce(p.Default); err != nil {
				return fmt.Errorf("command %q: invalid default for %q: %w", d.Name, p.Name, err)
			}
		}
	}
	return nil
}

// Registry maps command names to descriptors. Registration normally happens
// at startup, followed by Freeze; lookups are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Descriptor
	frozen   bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Descriptor)}
}

// Register adds d. It fails with *DuplicateCommandError when the name is
// taken and with ErrRegistryFrozen after Freeze.
func (r *Registry) Register(d Descriptor) error {
	if err := d.check(); err != nil {
		return fmt.Errorf("invalid command descriptor: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrRegistryFrozen
	}
	if _, exists := r.commands[d.Name]; exists {
		return &DuplicateCommandError{Name: d.Name}
	}
	d.Params = append([]Param(nil), d.Params...)
	r.commands[d.Name] = &d
	return nil
}

// RegisterAll registers every descriptor, stopping at the first error.
func (r *Registry) RegisterAll(ds ...Descriptor) error {
	for _, d := range ds {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}

// Freeze rejects further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Resolve returns the descriptor for name.
func (r *Registry) Resolve(name string) (*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.commands[name]
	if !ok {
		return nil, &UnknownCommandError{Name: name}
	}
	return d, nil
}

// Descriptors returns all descriptors sorted by name.
func (r *Registry) Descriptors() []*Descriptor {
	r.mu.RLock()
	out := make([]*Descriptor, 0, len(r.commands))
	for _, d := range r.commands {
		out = append(out, d)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}
