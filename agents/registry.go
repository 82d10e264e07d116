package agents

import (
	"errors"
	"sync"

	"github.com/lexcodex/remedy/framework"
)

// ErrEmptyRegistry distinguishes "nothing registered" from "nothing to fix".
// An empty registry is a wiring defect in the host application and must
// surface as an error, never as a silent zero-specialist run.
var ErrEmptyRegistry = errors.New("specialist registry is empty")

// Constructor builds one specialist bound to a run's context.
type Constructor func(ctx *framework.AgentContext) framework.SubAgent

// Registry maps specialist names to constructors. Registration is explicit
// and static: there is no dynamic discovery, so a specialist that exists in
// the build is a specialist that can be instantiated.
type Registry struct {
	mu    sync.RWMutex
	order []string
	ctors map[string]Constructor
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Register adds a constructor under name. Registering the same name twice
// keeps the latest constructor and the original position, so selection
// tie-breaks stay stable.
func (r *Registry) Register(name string, ctor Constructor) {
	if name == "" || ctor == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ctors[name]; !exists {
		r.order = append(r.order, name)
	}
	r.ctors[name] = ctor
}

// Names lists registered specialists in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len reports how many specialists are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ctors)
}

// CreateAll instantiates one specialist per registered constructor, bound to
// the given context, in registration order. An empty registry is an error.
func (r *Registry) CreateAll(ctx *framework.AgentContext) ([]framework.SubAgent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.ctors) == 0 {
		return nil, ErrEmptyRegistry
	}
	specialists := make([]framework.SubAgent, 0, len(r.ctors))
	for _, name := range r.order {
		specialists = append(specialists, r.ctors[name](ctx))
	}
	return specialists, nil
}

// PreferredSpecialists hints which specialists usually cover each issue
// type. The table biases discovery and documentation only; routing always
// consults the specialists' own declared supported types.
var PreferredSpecialists = map[framework.IssueType][]string{
	framework.IssueStyle:         {"style"},
	framework.IssueDocumentation: {"docs"},
	framework.IssueSecurity:      {"security"},
	framework.IssueComplexity:    {"architect"},
	framework.IssueDuplication:   {"architect"},
	framework.IssuePerformance:   {"architect"},
}

// DefaultRegistry registers the specialists that ship with the pipeline.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("style", func(ctx *framework.AgentContext) framework.SubAgent {
		return NewStyleSpecialist(ctx)
	})
	r.Register("docs", func(ctx *framework.AgentContext) framework.SubAgent {
		return NewDocsSpecialist(ctx)
	})
	r.Register("security", func(ctx *framework.AgentContext) framework.SubAgent {
		return NewSecuritySpecialist(ctx)
	})
	r.Register("architect", func(ctx *framework.AgentContext) framework.SubAgent {
		return NewArchitectSpecialist(ctx)
	})
	return r
}
