package syntax

// Model is the read-only view of a declaration group that attached
// expanders work against. Members expose the per-member queries:
// AttributeArguments, InitializerText and TypeAnnotationText.
type Model interface {
	Kind() DeclKind
	Members() []*Member
	Location() Pos
}

var _ Model = (*DeclGroup)(nil)

func (g *DeclGroup) Kind() DeclKind { return g.DeclKind }

func (g *DeclGroup) Members() []*Member { return g.MemberList }

func (g *DeclGroup) Location() Pos { return g.Span.Start }
