package macros

import (
	"sort"

	"github.com/gnolang/macrokit/internal/syntax"
)

// ExpressionMacro expands a freestanding #name(...) invocation into an
// expression.
type ExpressionMacro interface {
	ExpandExpression(inv *syntax.Expansion, ctx *Context) (string, error)
}

// MemberMacro is attached to a declaration group and returns member
// declarations to append to it.
type MemberMacro interface {
	ExpandMembers(attr *syntax.Attribute, group syntax.Model, ctx *Context) ([]string, error)
}

// PeerMacro is attached to a member and returns declarations to place
// next to it.
type PeerMacro interface {
	ExpandPeer(attr *syntax.Attribute, member *syntax.Member, ctx *Context) ([]string, error)
}

// Role is the way a macro is invoked.
type Role int

const (
	RoleExpression Role = iota
	RoleMember
	RolePeer
)

func (r Role) String() string {
	switch r {
	case RoleExpression:
		return "expression"
	case RoleMember:
		return "member"
	case RolePeer:
		return "peer"
	default:
		return "unknown"
	}
}

// Entry is a registered macro.
type Entry struct {
	Name  string
	Role  Role
	Usage string
	Macro any
}

func (e *Entry) Expression() (ExpressionMacro, bool) {
	m, ok := e.Macro.(ExpressionMacro)
	return m, ok && e.Role == RoleExpression
}

func (e *Entry) Member() (MemberMacro, bool) {
	m, ok := e.Macro.(MemberMacro)
	return m, ok && e.Role == RoleMember
}

func (e *Entry) Peer() (PeerMacro, bool) {
	m, ok := e.Macro.(PeerMacro)
	return m, ok && e.Role == RolePeer
}

// Registry maps macro names to expanders. It is filled once and only
// read afterwards, so it is safe to share between goroutines.
type Registry struct {
	entries map[string]*Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

func (r *Registry) RegisterExpression(name, usage string, m ExpressionMacro) {
	r.entries[name] = &Entry{Name: name, Role: RoleExpression, Usage: usage, Macro: m}
}

func (r *Registry) RegisterMember(name, usage string, m MemberMacro) {
	r.entries[name] = &Entry{Name: name, Role: RoleMember, Usage: usage, Macro: m}
}

func (r *Registry) RegisterPeer(name, usage string, m PeerMacro) {
	r.entries[name] = &Entry{Name: name, Role: RolePeer, Usage: usage, Macro: m}
}

func (r *Registry) Lookup(name string) (*Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns the registered macros sorted by name.
func (r *Registry) Entries() []*Entry {
	names := r.Names()
	entries := make([]*Entry, len(names))
	for i, name := range names {
		entries[i] = r.entries[name]
	}
	return entries
}

const (
	AddSubviewsName = "AddSubviews"
	AddToName       = "AddTo"
)

// Builtin returns a registry holding the built-in macros, with the
// hierarchy pair configured by cfg.
func Builtin(cfg HierarchyConfig) *Registry {
	r := NewRegistry()
	r.RegisterExpression("stringify", "#stringify(expr)", Stringify{})
	r.RegisterExpression("addSubview", "#addSubview(view)", AddSubview{})
	r.RegisterExpression("URL", `#URL("literal")`, URL{})
	r.RegisterExpression("unwrap", "#unwrap(optional[, message])", Unwrap{})
	r.RegisterExpression("log", "#log(expr)", Log{})
	r.RegisterExpression("buildDate", "#buildDate", BuildDate{})

	hierarchy := NewHierarchyMacro(cfg, AddToName)
	r.RegisterMember(AddSubviewsName, "@"+AddSubviewsName, hierarchy)
	r.RegisterPeer(AddToName, `@`+AddToName+`("parent")`, hierarchy)
	return r
}

// Default returns the built-in macros with the default hierarchy
// configuration.
func Default() *Registry {
	return Builtin(DefaultHierarchyConfig())
}
