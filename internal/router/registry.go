package router

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// Handler executes one command.
type Handler interface {
	Execute(ctx context.Context, inv *Invocation) (Response, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, inv *Invocation) (Response, error)

// Execute calls f.
func (f HandlerFunc) Execute(ctx context.Context, inv *Invocation) (Response, error) {
	return f(ctx, inv)
}

// Invocation is what a handler receives: the message, the matched path, and
// the arguments left after the path tokens were removed.
type Invocation struct {
	Message Message
	Command string
	Args    Args
}

var (
	// ErrInvalidName rejects paths with empty segments such as "a..b".
	ErrInvalidName = errors.New("invalid command name")
	// ErrDuplicateName rejects a second registration under the same path.
	ErrDuplicateName = errors.New("command already registered")
)

// Registry maps dot-paths to handlers. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	folded   map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		folded:   make(map[string]string),
	}
}

// Register binds handler to name. The empty name registers a fallback that
// matches when no longer path does. Names must be unique ignoring case.
func (r *Registry) Register(name string, handler Handler) error {
	if handler == nil {
		return fmt.Errorf("%w: %q has no handler", ErrInvalidName, name)
	}
	if name != "" {
		for _, segment := range strings.Split(name, ".") {
			if strings.TrimSpace(segment) == "" || strings.ContainsFunc(segment, isSpace) {
				return fmt.Errorf("%w: %q", ErrInvalidName, name)
			}
		}
	}
	key := fold(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.folded[key]; ok {
		return fmt.Errorf("%w: %q (conflicts with %q)", ErrDuplicateName, name, existing)
	}
	r.handlers[name] = handler
	r.folded[key] = name
	return nil
}

// MustRegister is Register for static wiring; it panics on error.
func (r *Registry) MustRegister(name string, handler Handler) {
	if err := r.Register(name, handler); err != nil {
		panic(err)
	}
}

// Lookup returns the handler registered under exactly name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// LookupFold returns the handler whose name equals name under case folding,
// along with the registered spelling.
func (r *Registry) LookupFold(name string) (string, Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	registered, ok := r.folded[fold(name)]
	if !ok {
		return "", nil, false
	}
	return registered, r.handlers[registered], true
}

// Names returns the registered paths in sorted order. The fallback path is
// omitted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// cases.Caser is stateful, so each call gets its own.
func fold(value string) string {
	return cases.Fold().String(value)
}
