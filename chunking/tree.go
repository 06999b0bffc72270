package chunking

import (
	"encoding/xml"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/medirag/core"
	"golang.org/x/net/html/charset"
)

// Node is one element of a document tree.
//
// Character data is kept interleaved with children: text[i] precedes
// Children[i], and the final entry of text follows the last child.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Children []*Node
	text     []string
}

// Document is a parsed source document. It is not modified after ReadDocument returns.
type Document struct {
	Source string
	Root   *Node
}

// Text returns the concatenated character data of n and all its descendants,
// in document order.
func (n *Node) Text() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	for i, t := range n.text {
		b.WriteString(t)
		if i < len(n.Children) {
			n.Children[i].writeText(b)
		}
	}
}

// Attr returns the value of the named attribute, or "" when absent.
func (n *Node) Attr(name string) string {
	return n.Attrs[strings.ToLower(name)]
}

// Find returns the first node matching a slash-separated path of tag names,
// relative to n's children. It returns nil when nothing matches.
func (n *Node) Find(path string) *Node {
	all := n.FindAll(path)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

// FindAll returns every node matching a slash-separated path of tag names,
// relative to n's children, in document order.
func (n *Node) FindAll(path string) []*Node {
	current := []*Node{n}
	for _, step := range strings.Split(strings.ToLower(path), "/") {
		if step == "" {
			continue
		}
		var next []*Node
		for _, c := range current {
			for _, child := range c.Children {
				if child.Tag == step {
					next = append(next, child)
				}
			}
		}
		current = next
	}
	if len(current) == 1 && current[0] == n {
		return nil
	}
	return current
}

// FindText returns the trimmed text of the first node matching path, or "".
func (n *Node) FindText(path string) string {
	if found := n.Find(path); found != nil {
		return strings.TrimSpace(found.Text())
	}
	return ""
}

// Walk visits n and its descendants depth-first in document order.
// Returning false from fn skips the visited node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// ReadDocument parses an XML document from r.
// Tag and attribute names are lower-cased and stripped of namespace prefixes.
// Any decoding failure is reported as a *core.ParseError for source.
func ReadDocument(r io.Reader, source string) (*Document, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel
	decoder.Entity = xml.HTMLEntity

	var (
		root  *Node
		stack []*Node
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &core.ParseError{Source: source, Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{
				Tag:  strings.ToLower(t.Name.Local),
				text: []string{""},
			}
			if len(t.Attr) > 0 {
				node.Attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					node.Attrs[strings.ToLower(a.Name.Local)] = a.Value
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, &core.ParseError{Source: source, Err: errors.New("multiple root elements")}
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
				parent.text = append(parent.text, "")
			}
			stack = append(stack, node)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			top.text[len(top.text)-1] += string(t)
		}
	}

	if root == nil {
		return nil, &core.ParseError{Source: source, Err: errors.New("no root element")}
	}
	if len(stack) > 0 {
		return nil, &core.ParseError{Source: source, Err: io.ErrUnexpectedEOF}
	}

	return &Document{Source: source, Root: root}, nil
}

// ReadFile opens and parses the document at path.
// The document's Source is the base name of path.
func ReadFile(path string) (*Document, error) {
	source := filepath.Base(path)
	f, err := os.Open(path)
	if err != nil {
		return nil, &core.ParseError{Source: source, Err: err}
	}
	defer f.Close()
	return ReadDocument(f, source)
}
