package jexl

import (
	"sync"

	"github.com/cwbudde/go-jexl/internal/template"
)

// Template is the façade's binding of internal/template.Template to this
// Engine.
type Template = template.Template

// templateRegistry is the engine-level named-template registry
// `include(name, args...)` resolves against.
type templateRegistry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

func (r *templateRegistry) Lookup(name string) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[name]
	return t, ok
}

func (r *templateRegistry) register(name string, t *Template) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[name] = t
}

func (e *Engine) templates() *templateRegistry {
	if e.templateRegistry == nil {
		e.templateRegistry = &templateRegistry{templates: make(map[string]*Template)}
	}
	return e.templateRegistry
}

// CreateTemplate compiles source using the default "$$" line-directive
// prefix.
func (e *Engine) CreateTemplate(source string, parms ...string) (*Template, error) {
	return template.New(e.interp, e.templates(), source, parms...)
}

// CreateTemplateWithPrefix compiles source using prefix as the
// line-directive marker.
func (e *Engine) CreateTemplateWithPrefix(prefix, source string, parms ...string) (*Template, error) {
	return template.NewWithPrefix(e.interp, e.templates(), prefix, source, parms...)
}

// RegisterTemplate names t for later `include(name, args...)` lookup from
// any other template compiled against this Engine.
func (e *Engine) RegisterTemplate(name string, t *Template) {
	e.templates().register(name, t)
}
