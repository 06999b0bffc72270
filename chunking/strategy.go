package chunking

import (
	"github.com/poiesic/medirag/core"
)

// Strategy groups the meaningful fragments of a document into sections.
// A Parser selects exactly one Strategy per document.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string

	// Applies reports whether the strategy can handle doc.
	Applies(doc *Document) bool

	// Sections returns the document's sections in document order.
	// Sections without fragments are omitted.
	Sections(doc *Document) []core.Section
}

// fragmenter normalizes and filters text pulled from prose nodes.
type fragmenter struct {
	filter *Filter
	prose  tagSet
}

func (f fragmenter) fragment(n *Node) (string, bool) {
	text := Normalize(n.Text())
	if !f.filter.IsMeaningful(text) {
		return "", false
	}
	return text, true
}

// collect appends the meaningful text of every outermost prose node in the
// subtree rooted at n. Nested prose nodes are covered by their ancestor's
// text and not revisited.
func (f fragmenter) collect(n *Node, out []string) []string {
	n.Walk(func(node *Node) bool {
		if !f.prose.has(node.Tag) {
			return true
		}
		if text, ok := f.fragment(node); ok {
			out = append(out, text)
		}
		return false
	})
	return out
}

// SchemaStrategy handles documents that carry a recognized information-body
// container. Every immediate child of the container becomes one section,
// labeled by its first title child or, failing that, its own tag name.
type SchemaStrategy struct {
	fragmenter
	container string
	titles    tagSet
}

// NewSchemaStrategy creates a SchemaStrategy.
func NewSchemaStrategy(filter *Filter, container string, titleTags, proseTags []string) *SchemaStrategy {
	return &SchemaStrategy{
		fragmenter: fragmenter{filter: filter, prose: newTagSet(proseTags)},
		container:  lowerTag(container),
		titles:     newTagSet(titleTags),
	}
}

func (s *SchemaStrategy) Name() string { return "schema" }

func (s *SchemaStrategy) Applies(doc *Document) bool {
	return s.findContainer(doc) != nil
}

func (s *SchemaStrategy) Sections(doc *Document) []core.Section {
	container := s.findContainer(doc)
	if container == nil {
		return nil
	}

	var sections []core.Section
	for _, child := range container.Children {
		fragments := s.collect(child, nil)
		if len(fragments) == 0 {
			continue
		}
		sections = append(sections, core.Section{
			Chapter:   s.label(child),
			Fragments: fragments,
		})
	}
	return sections
}

func (s *SchemaStrategy) label(n *Node) string {
	for _, child := range n.Children {
		if s.titles.has(child.Tag) {
			if title := Normalize(child.Text()); title != "" {
				return title
			}
			break
		}
	}
	return n.Tag
}

func (s *SchemaStrategy) findContainer(doc *Document) *Node {
	if doc == nil || doc.Root == nil || s.container == "" {
		return nil
	}
	var found *Node
	doc.Root.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.Tag == s.container {
			found = n
			return false
		}
		return true
	})
	return found
}

// GenericStrategy walks the whole document once, depth first. Heading nodes
// close the current section and open a new one; prose nodes feed the
// current section. It applies to every document.
type GenericStrategy struct {
	fragmenter
	headings       tagSet
	defaultChapter string
}

// NewGenericStrategy creates a GenericStrategy.
func NewGenericStrategy(filter *Filter, headingTags, proseTags []string, defaultChapter string) *GenericStrategy {
	return &GenericStrategy{
		fragmenter:     fragmenter{filter: filter, prose: newTagSet(proseTags)},
		headings:       newTagSet(headingTags),
		defaultChapter: defaultChapter,
	}
}

func (g *GenericStrategy) Name() string { return "generic" }

func (g *GenericStrategy) Applies(doc *Document) bool {
	return doc != nil && doc.Root != nil
}

func (g *GenericStrategy) Sections(doc *Document) []core.Section {
	if !g.Applies(doc) {
		return nil
	}

	var (
		sections []core.Section
		buffer   []string
		chapter  = g.defaultChapter
	)

	// Each flush emits its own section. Repeated chapter labels are not merged.
	flush := func() {
		if len(buffer) == 0 {
			return
		}
		sections = append(sections, core.Section{Chapter: chapter, Fragments: buffer})
		buffer = nil
	}

	doc.Root.Walk(func(n *Node) bool {
		switch {
		case g.headings.has(n.Tag):
			flush()
			if heading := Normalize(n.Text()); heading != "" {
				chapter = heading
			}
			return false
		case g.prose.has(n.Tag):
			if text, ok := g.fragment(n); ok {
				buffer = append(buffer, text)
			}
			return false
		}
		return true
	})
	flush()

	return sections
}
