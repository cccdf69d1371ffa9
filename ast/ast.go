// Package ast declares the types used to represent a compiled document:
// a flat list of blocks, each holding the inline spans of its text.
package ast

//go:generate sumgen Node = *File | *Paragraph | *Header | *FencedCode | *Directive | *Blank | Plain | *Format | *Image | *Link | Address | Raw
type Node interface {
	node()
}

//go:generate sumgen Block = *Paragraph | *Header | *FencedCode | *Directive | *Blank
type Block interface {
	Node
	block()
}

//go:generate sumgen Span = Plain | *Format | *Image | *Link | Address | Raw
type Span interface {
	Node
	span()
}

// File is the result of parsing one source document.
// Its blocks cover the source lines in order.
type File struct {
	List   []Block
	Errors []error
}

// Paragraph is a run of non-blank lines joined by newlines.
type Paragraph struct {
	Line  int
	Body  string
	Spans []Span
}

// Header is an ATX heading. Text is rendered literally.
type Header struct {
	Line  int
	Level int
	ID    string
	Text  string
}

// FencedCode is a ``` delimited block. Body keeps the newline of its last line.
type FencedCode struct {
	Line    int
	EndLine int
	Lang    string
	Body    string
}

// Directive is a %%% delimited block handed to a named renderer.
type Directive struct {
	Line    int
	EndLine int
	Name    string
	Raw     string
}

// Blank is a run of empty lines.
type Blank struct {
	Line    int
	EndLine int
}

// Plain is literal text.
type Plain string

// Format wraps spans in a formatting tag.
type Format struct {
	Kind  DKind
	Spans []Span
}

type DKind int

const (
	Italic DKind = iota
	Bold
	Strikethrough
)

type Image struct {
	Src string
	Alt string
}

type Link struct {
	Href  string
	Spans []Span
}

// Address is a free-text postal address rendered as a map link.
type Address string

// Raw is a code span.
type Raw string

func (*File) node()       {}
func (*Paragraph) node()  {}
func (*Header) node()     {}
func (*FencedCode) node() {}
func (*Directive) node()  {}
func (*Blank) node()      {}
func (Plain) node()       {}
func (*Format) node()     {}
func (*Image) node()      {}
func (*Link) node()       {}
func (Address) node()     {}
func (Raw) node()         {}

func (*Paragraph) block()  {}
func (*Header) block()     {}
func (*FencedCode) block() {}
func (*Directive) block()  {}
func (*Blank) block()      {}

func (Plain) span()   {}
func (*Format) span() {}
func (*Image) span()  {}
func (*Link) span()   {}
func (Address) span() {}
func (Raw) span()     {}

// Walk traverses n depth-first, calling f for n and for every node below it.
// If f returns a nil node for a block or span, that element is removed
// from its parent. Walk stops at the first error returned by f.
func Walk(n Node, f Walker) (Node, error) {
	if n == nil {
		return nil, nil
	}
	nn, e := f(n)
	if e != nil {
		return n, e
	}
	if nn == nil {
		return nil, nil
	}
	n = nn
	switch t := n.(type) {
	case *File:
		list := t.List[:0]
		for _, b := range t.List {
			s, e := Walk(b, f)
			if e != nil {
				return n, e
			}
			if s != nil {
				list = append(list, s.(Block))
			}
		}
		t.List = list
	case *Paragraph:
		spans, e := walkSpans(t.Spans, f)
		if e != nil {
			return n, e
		}
		t.Spans = spans
	case *Format:
		spans, e := walkSpans(t.Spans, f)
		if e != nil {
			return n, e
		}
		t.Spans = spans
	case *Link:
		spans, e := walkSpans(t.Spans, f)
		if e != nil {
			return n, e
		}
		t.Spans = spans
	}
	return n, nil
}

func walkSpans(spans []Span, f Walker) ([]Span, error) {
	out := spans[:0]
	for _, sp := range spans {
		s, e := Walk(sp, f)
		if e != nil {
			return spans, e
		}
		if s != nil {
			out = append(out, s.(Span))
		}
	}
	return out, nil
}

type Walker func(Node) (Node, error)
