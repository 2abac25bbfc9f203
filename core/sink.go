package core

import (
	"errors"
	"pagewidth/models"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StyleSink owns the single managed style block of a document.
// Both operations are idempotent full replacements.
type StyleSink interface {
	ApplyRules(css string) error
	ClearRules() error
}

// ApplyDecision hands a decision to sink.
func ApplyDecision(sink StyleSink, d models.Decision) error {
	if d.IsClear() {
		return sink.ClearRules()
	}
	return sink.ApplyRules(d.CSS)
}

// ErrNoDocumentElement is returned when a tree has no <html> element to
// attach a <head> to.
var ErrNoDocumentElement = errors.New("document has no html element")

// DocumentSink manages the style element inside a parsed HTML tree.
type DocumentSink struct {
	doc *html.Node
}

// NewDocumentSink wraps a tree produced by html.Parse.
func NewDocumentSink(doc *html.Node) *DocumentSink {
	return &DocumentSink{doc: doc}
}

// ApplyRules removes any managed style element and appends a fresh one to
// <head>, creating <head> if the tree lacks one.
func (s *DocumentSink) ApplyRules(css string) error {
	s.removeStyle()
	head, err := s.head()
	if err != nil {
		return err
	}
	style := &html.Node{
		Type:     html.ElementNode,
		Data:     "style",
		DataAtom: atom.Style,
		Attr:     []html.Attribute{{Key: "id", Val: models.StyleElementID}},
	}
	style.AppendChild(&html.Node{Type: html.TextNode, Data: css})
	head.AppendChild(style)
	return nil
}

// ClearRules removes the managed style element if present.
func (s *DocumentSink) ClearRules() error {
	s.removeStyle()
	return nil
}

// StyleText returns the text of the managed style element.
func (s *DocumentSink) StyleText() (string, bool) {
	styles := findAll(s.doc, isManagedStyle)
	if len(styles) == 0 {
		return "", false
	}
	var text string
	for c := styles[0].FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			text += c.Data
		}
	}
	return text, true
}

func (s *DocumentSink) removeStyle() {
	for _, n := range findAll(s.doc, isManagedStyle) {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
}

func (s *DocumentSink) head() (*html.Node, error) {
	if heads := findAll(s.doc, isElement(atom.Head)); len(heads) > 0 {
		return heads[0], nil
	}
	roots := findAll(s.doc, isElement(atom.Html))
	if len(roots) == 0 {
		return nil, ErrNoDocumentElement
	}
	head := &html.Node{Type: html.ElementNode, Data: "head", DataAtom: atom.Head}
	roots[0].InsertBefore(head, roots[0].FirstChild)
	return head, nil
}

func isManagedStyle(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "id" && a.Val == models.StyleElementID {
			return true
		}
	}
	return false
}

func isElement(a atom.Atom) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a
	}
}

func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

// MemorySink keeps the managed style as a string, for page sessions that are
// driven over the API rather than backed by a real document.
type MemorySink struct {
	mu      sync.Mutex
	css     string
	applied bool
	writes  int
}

func (s *MemorySink) ApplyRules(css string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.css = css
	s.applied = true
	s.writes++
	return nil
}

func (s *MemorySink) ClearRules() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.css = ""
	s.applied = false
	s.writes++
	return nil
}

// CSS returns the current style text and whether a style is applied.
func (s *MemorySink) CSS() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.css, s.applied
}

// Writes counts ApplyRules and ClearRules calls.
func (s *MemorySink) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
