package macros

import (
	"fmt"
	"strings"

	"github.com/gnolang/macrokit/internal/syntax"
)

// HierarchyConfig shapes the method synthesized by @AddSubviews.
type HierarchyConfig struct {
	// Root is the receiver of unparented children.
	Root string `yaml:"root"`
	// AddMethod is the method that attaches a child to its parent.
	AddMethod string `yaml:"add_method"`
	// MethodName is the name of the synthesized method.
	MethodName string `yaml:"method_name"`
	// Override marks the method as overriding; nil means true.
	Override *bool `yaml:"override,omitempty"`
	// ViewTypes extends the built-in view type allow-list.
	ViewTypes []string `yaml:"view_types,omitempty"`
}

func DefaultHierarchyConfig() HierarchyConfig {
	return HierarchyConfig{
		Root:       "view",
		AddMethod:  "addSubview",
		MethodName: "setHierarchy",
	}
}

// withDefaults fills the unset fields from DefaultHierarchyConfig.
func (c HierarchyConfig) withDefaults() HierarchyConfig {
	def := DefaultHierarchyConfig()
	if c.Root == "" {
		c.Root = def.Root
	}
	if c.AddMethod == "" {
		c.AddMethod = def.AddMethod
	}
	if c.MethodName == "" {
		c.MethodName = def.MethodName
	}
	return c
}

func (c HierarchyConfig) override() bool {
	return c.Override == nil || *c.Override
}

// HierarchyMacro implements the @AddSubviews / @AddTo pair. As a member
// macro it synthesizes the view hierarchy method of a class or struct;
// as a peer macro it only validates the @AddTo marker, which the
// member macro reads when collecting children.
type HierarchyMacro struct {
	Config HierarchyConfig
	// Marker is the attribute naming a child's parent.
	Marker string

	viewTypes []string
}

func NewHierarchyMacro(cfg HierarchyConfig, marker string) *HierarchyMacro {
	cfg = cfg.withDefaults()
	types := make([]string, 0, len(ViewTypes)+len(cfg.ViewTypes))
	types = append(types, ViewTypes...)
	for _, t := range cfg.ViewTypes {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	return &HierarchyMacro{Config: cfg, Marker: marker, viewTypes: types}
}

// child is a view property and the parent it is attached to; an empty
// parent means the root.
type child struct {
	name   string
	parent string
}

func (h *HierarchyMacro) ExpandMembers(attr *syntax.Attribute, group syntax.Model, _ *Context) ([]string, error) {
	if kind := group.Kind(); kind != syntax.DeclClass && kind != syntax.DeclStruct {
		return nil, errorf("@%s can only be applied to classes or structs", attr.Name)
	}

	var unparented, parented []child
	for _, m := range group.Members() {
		if !h.IsSubview(m) {
			continue
		}
		c := child{name: m.Name}
		if args, ok := m.AttributeArguments(h.Marker); ok {
			c.parent, _ = parentName(args)
		}
		if c.parent == "" {
			unparented = append(unparented, c)
		} else {
			parented = append(parented, c)
		}
	}

	children := append(unparented, parented...)
	if len(children) == 0 {
		return nil, nil
	}
	return []string{h.method(children)}, nil
}

func (h *HierarchyMacro) method(children []child) string {
	var sb strings.Builder
	if h.Config.override() {
		sb.WriteString("override ")
	}
	fmt.Fprintf(&sb, "func %s() {\n", h.Config.MethodName)
	for _, c := range children {
		parent := c.parent
		if parent == "" {
			parent = h.Config.Root
		}
		fmt.Fprintf(&sb, "    %s.%s(%s)\n", parent, h.Config.AddMethod, c.name)
	}
	sb.WriteString("}")
	return sb.String()
}

// ExpandPeer checks that the marker names its parent with a static
// string literal. The marker itself contributes no declarations.
func (h *HierarchyMacro) ExpandPeer(attr *syntax.Attribute, _ *syntax.Member, _ *Context) ([]string, error) {
	if _, ok := parentName(attr.Args); !ok {
		return nil, errorf("@%s requires a static string literal", attr.Name)
	}
	return nil, nil
}

func parentName(args []syntax.Argument) (string, bool) {
	if len(args) != 1 || args[0].Label != "" || args[0].Expr.Multiline {
		return "", false
	}
	name, ok := args[0].Expr.StringValue()
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// IsSubview reports whether m is a stored instance property whose type,
// or failing that whose initializer, names an allow-listed view type.
func (h *HierarchyMacro) IsSubview(m *syntax.Member) bool {
	if m.Kind != syntax.MemberProperty || m.Computed || m.Name == "" {
		return false
	}
	if m.HasModifier("static") || m.HasModifier("class") {
		return false
	}

	if m.Type != nil {
		return h.isViewType(m.Type.Name)
	}
	if m.Init == nil || m.Init.Expr == nil {
		return false
	}
	switch m.Init.Kind {
	case syntax.InitDeferred:
		for _, ident := range m.Init.Expr.BodyIdents {
			if h.containsViewType(ident) {
				return true
			}
		}
		return false
	default:
		return h.isViewType(m.Init.Expr.Leading)
	}
}

func (h *HierarchyMacro) isViewType(name string) bool {
	if name == "" {
		return false
	}
	for _, t := range h.viewTypes {
		if strings.HasPrefix(name, t) {
			return true
		}
	}
	return false
}

func (h *HierarchyMacro) containsViewType(ident string) bool {
	for _, t := range h.viewTypes {
		if strings.Contains(ident, t) {
			return true
		}
	}
	return false
}
