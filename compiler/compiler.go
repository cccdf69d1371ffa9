// MIT License

// Copyright (c) 2018 Akhil Indurti

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package compiler turns source documents into HTML.
//
// A Compiler ties the parser, the directive registry and the HTML
// generator together:
//
//	c := compiler.New()
//	out, err := c.Compile(compiler.NewSourceDocument("page.markdown", src))
//
// Compile is a pure function of its input. It performs no I/O, keeps no
// state between calls and may be called from many goroutines at once.
package compiler // import "akhil.cc/mdc/compiler"

import (
	"path/filepath"
	"strings"

	"akhil.cc/mdc/directive"
	"akhil.cc/mdc/gen/html"
	"akhil.cc/mdc/parser"
)

// Dialect selects the extensions enabled on top of the baseline grammar.
type Dialect int

const (
	// Minimal is the baseline grammar: paragraphs, headers, fenced code
	// and inline formatting.
	Minimal Dialect = iota
	// Extended adds header anchors, address links and directive blocks.
	Extended
)

// Mode returns the parser flags of the dialect.
func (d Dialect) Mode() parser.Mode {
	if d == Extended {
		return parser.Anchors | parser.AddressLinks | parser.Directives
	}
	return 0
}

func (d Dialect) String() string {
	if d == Extended {
		return "extended"
	}
	return "minimal"
}

// ParseDialect maps "minimal" and "extended" to their dialect.
func ParseDialect(s string) (Dialect, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minimal":
		return Minimal, true
	case "extended":
		return Extended, true
	}
	return Minimal, false
}

// Suffixes maps lower-case file suffixes, dot included, to dialects.
type Suffixes map[string]Dialect

// DefaultSuffixes is the suffix table used by NewSourceDocument.
var DefaultSuffixes = Suffixes{
	".md":       Minimal,
	".markdown": Extended,
}

// Dialect returns the dialect for name. Unknown suffixes are Minimal.
func (s Suffixes) Dialect(name string) Dialect {
	if d, ok := s[strings.ToLower(filepath.Ext(name))]; ok {
		return d
	}
	return Minimal
}

// SourceDocument is one document to compile. It is a plain value; the
// compiler never modifies it.
type SourceDocument struct {
	Name    string
	Content string
	Dialect Dialect
}

// NewSourceDocument returns a document whose dialect is chosen from the
// suffix of name by DefaultSuffixes.
func NewSourceDocument(name, content string) SourceDocument {
	return SourceDocument{Name: name, Content: content, Dialect: DefaultSuffixes.Dialect(name)}
}

// Compiler compiles source documents. It is immutable once built.
type Compiler struct {
	registry *directive.Registry
	unknown  html.UnknownPolicy
	suffixes Suffixes
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithRegistry replaces the default directive registry.
func WithRegistry(reg *directive.Registry) Option {
	return func(c *Compiler) { c.registry = reg }
}

// WithDirective registers an additional directive renderer.
func WithDirective(name string, r directive.Renderer) Option {
	return func(c *Compiler) { c.registry = c.registry.With(name, r) }
}

// WithUnknownDirective sets the policy for unregistered directive names.
// The default is html.Fail.
func WithUnknownDirective(p html.UnknownPolicy) Option {
	return func(c *Compiler) { c.unknown = p }
}

// WithSuffix maps a file suffix to a dialect for documents built with
// Compiler.Source.
func WithSuffix(suffix string, d Dialect) Option {
	return func(c *Compiler) {
		if !strings.HasPrefix(suffix, ".") {
			suffix = "." + suffix
		}
		c.suffixes[strings.ToLower(suffix)] = d
	}
}

// New returns a compiler with the formula and table directives, modified by opts.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		registry: directive.Default(),
		suffixes: make(Suffixes, len(DefaultSuffixes)),
	}
	for k, v := range DefaultSuffixes {
		c.suffixes[k] = v
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source is like NewSourceDocument but uses the compiler's suffix table.
func (c *Compiler) Source(name, content string) SourceDocument {
	return SourceDocument{Name: name, Content: content, Dialect: c.suffixes.Dialect(name)}
}

// Handles reports whether the compiler has a dialect registered for the suffix of name.
func (c *Compiler) Handles(name string) bool {
	_, ok := c.suffixes[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Registry returns the compiler's directive registry.
func (c *Compiler) Registry() *directive.Registry {
	return c.registry
}

// Compile parses doc and renders it to HTML. Fragments are concatenated
// in source order without added whitespace.
//
// Any malformed block fails the whole document: the returned error joins
// one *ast.Error per offending block and the output is empty.
func (c *Compiler) Compile(doc SourceDocument) (string, error) {
	if doc.Content == "" {
		return "", nil
	}
	file, err := parser.Parse(strings.NewReader(doc.Content), doc.Dialect.Mode())
	if err != nil {
		return "", err
	}
	g := html.Gen(file, c.registry)
	g.Unknown = c.unknown
	out, err := g.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
