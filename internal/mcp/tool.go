package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Tool is a named operation callable through tools/call.
type Tool interface {
	// Name returns the tool's unique name.
	Name() string
	// Description returns a human-readable description of the tool.
	Description() string
	// Parameters returns the JSON Schema describing the tool's input.
	Parameters() map[string]any
	// Execute runs the tool. It returns the result text and whether the call
	// succeeded; a failed call's text explains the failure.
	Execute(ctx context.Context, args map[string]any) (string, bool)
}

// Definition describes a tool for tools/list.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Registry holds tools in registration order.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
	log   *slog.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
		log:   slog.Default(),
	}
}

// SetLogger sets the logger that records tool calls.
func (r *Registry) SetLogger(l *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = l
}

func (r *Registry) logger() *slog.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.log
}

// Register adds a tool, replacing any tool with the same name.
func (r *Registry) Register(tools ...Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range tools {
		name := t.Name()
		if _, exists := r.tools[name]; !exists {
			r.order = append(r.order, name)
		}
		r.tools[name] = t
	}
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Definitions returns the definitions of all tools in registration order.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, Definition{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Parameters(),
		})
	}
	return defs
}

// Execute runs the named tool. The error is non-nil only for unknown tools.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (string, bool, error) {
	r.mu.RLock()
	t, ok := r.tools[name]
	log := r.log
	r.mu.RUnlock()
	if !ok {
		return "", false, fmt.Errorf("unknown tool: %s", name)
	}

	start := time.Now()
	result, success := t.Execute(ctx, args)
	log.Debug("tool call", "tool", name, "success", success, "elapsed", time.Since(start))
	return result, success, nil
}
