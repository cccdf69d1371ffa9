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

// Package parser implements a parser for mdc source. It takes in an io.Reader
// as input and outputs an *ast.File.
//
// It is the responsibility of the generator to render directive bodies;
// the parser only cuts them out of the source.
//
// The parser adheres to the following line grammar:
//
//      line      = { unicode_char } newline .
//      blank     = { " " | tab } newline .
//      header    = octothorpe { octothorpe } ( " " text [ anchor ] | newline ) .
//      anchor    = "{#" id "}" .
//      fence     = "```" [ lang ] newline { line } "```" newline .
//      directive = "%%%" name newline { line } "%%%" newline .
//      paragraph = line { line } .
//      block     = blank | header | fence | directive | paragraph .
//      source    = { block } .
//
// A header has at most six octothorpes. Anchors are recognized in Anchors
// mode and directives in Directives mode; otherwise those lines are
// ordinary text.
package parser // import "akhil.cc/mdc/parser"

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"akhil.cc/mdc/ast"
)

// A Mode value is a set of flags (or 0). They enable the dialect
// extensions layered on top of the baseline grammar.
type Mode uint

const (
	Anchors      Mode = 1 << iota // {#id} anchors at the end of headers
	AddressLinks                  // <@address> map links
	Directives                    // %%% name ... %%% blocks
)

// MustParse is like Parse but panics if the source cannot be parsed.
func MustParse(src io.Reader, mode Mode) *ast.File {
	f, err := Parse(src, mode)
	if err != nil {
		panic("Parse error: " + err.Error())
	}
	return f
}

// Parse parses the source and if successful, returns its corresponding AST structure.
// Every malformed block is reported; the returned error joins them all and
// each one is an *ast.Error.
func Parse(src io.Reader, mode Mode) (f *ast.File, err error) {
	p := &parser{
		b:    bufio.NewReader(src),
		mode: mode,
	}
	f = &ast.File{List: []ast.Block{}}
	p.next()
	for {
		if _, ok := p.peek(); !ok {
			break
		}
		f.List = append(f.List, p.block())
	}
	f.Errors = p.errors
	return f, errors.Join(p.errors...)
}

const eof = -1

type parser struct {
	errors []error
	b      *bufio.Reader
	r      rune
	mode   Mode

	// one line of lookahead
	la     string
	hasLA  bool
	lineno int // number of the last line read from b
}

// block = blank | header | fence | directive | paragraph .
func (p *parser) block() ast.Block {
	l, _ := p.peek()
	switch {
	case isBlank(l):
		return p.blank()
	case isFence(l):
		return p.fencedCode()
	case p.mode&Directives != 0 && isDirective(l):
		return p.directive()
	case headerLevel(l) > 0:
		return p.header()
	default:
		return p.paragraph()
	}
}

func (p *parser) blank() *ast.Blank {
	b := &ast.Blank{Line: p.lineno}
	for {
		l, ok := p.peek()
		if !ok || !isBlank(l) {
			break
		}
		b.EndLine = p.lineno
		p.advance()
	}
	return b
}

// header = octothorpe { octothorpe } ( " " text [ anchor ] | newline ) .
func (p *parser) header() *ast.Header {
	l, _ := p.peek()
	hdr := &ast.Header{Line: p.lineno, Level: headerLevel(l)}
	p.advance()
	text := strings.TrimSpace(l[hdr.Level:])
	if p.mode&Anchors != 0 {
		rest, id, err := splitAnchor(text)
		if err != "" {
			p.errorf(ast.MalformedHeadingAnchor, hdr.Line, hdr.Line, "", "%s in %q", err, l)
		}
		text, hdr.ID = rest, id
	}
	hdr.Text = trimClosing(text)
	return hdr
}

// fence = "```" [ lang ] newline { line } "```" newline .
func (p *parser) fencedCode() *ast.FencedCode {
	l, _ := p.peek()
	fc := &ast.FencedCode{Line: p.lineno}
	if fields := strings.Fields(l[3:]); len(fields) > 0 {
		fc.Lang = fields[0]
	}
	p.advance()
	var buf strings.Builder
	for {
		l, ok := p.peek()
		if !ok {
			fc.EndLine = p.lineno
			p.errorf(ast.InvalidFencedCodeBlock, fc.Line, fc.EndLine, "", "code block is not terminated")
			break
		}
		p.advance()
		if strings.TrimRight(l, " \t") == "```" {
			fc.EndLine = p.lineno
			break
		}
		buf.WriteString(l + "\n")
	}
	fc.Body = buf.String()
	return fc
}

// directive = "%%%" name newline { line } "%%%" newline .
func (p *parser) directive() *ast.Directive {
	l, _ := p.peek()
	dir := &ast.Directive{Line: p.lineno, Name: strings.TrimSpace(l[3:])}
	p.advance()
	if !isName(dir.Name) {
		p.errorf(ast.MalformedDirectiveBlock, dir.Line, dir.Line, dir.Name, "directive name must be an identifier: %q", l)
	}
	var buf strings.Builder
	for {
		l, ok := p.peek()
		if !ok {
			dir.EndLine = p.lineno
			p.errorf(ast.MalformedDirectiveBlock, dir.Line, dir.EndLine, dir.Name, "directive is not terminated")
			break
		}
		p.advance()
		if strings.TrimRight(l, " \t") == "%%%" {
			dir.EndLine = p.lineno
			break
		}
		buf.WriteString(l + "\n")
	}
	dir.Raw = buf.String()
	return dir
}

// paragraph = line { line } .
func (p *parser) paragraph() *ast.Paragraph {
	par := &ast.Paragraph{Line: p.lineno}
	var lines []string
	for {
		l, ok := p.peek()
		if !ok || (len(lines) > 0 && p.interrupts(l)) {
			break
		}
		lines = append(lines, l)
		p.advance()
	}
	par.Body = strings.Join(lines, "\n")
	par.Spans = Inline(par.Body, p.mode)
	return par
}

// interrupts reports whether l starts a block other than a paragraph.
func (p *parser) interrupts(l string) bool {
	return isBlank(l) || isFence(l) || headerLevel(l) > 0 ||
		(p.mode&Directives != 0 && isDirective(l))
}

func (p *parser) next() rune {
	r, size, err := p.b.ReadRune()
	if err != nil || size == 0 {
		r = eof
	}
	p.r = r
	return r
}

// peek returns the next line without its newline. It reports false at the end of input.
func (p *parser) peek() (string, bool) {
	if p.hasLA {
		return p.la, true
	}
	if p.r == eof {
		return "", false
	}
	var buf strings.Builder
	for p.r != '\n' && p.r != eof {
		if p.r != '\r' {
			buf.WriteRune(p.r)
		}
		p.next()
	}
	if p.r == '\n' {
		p.next()
	}
	p.lineno++
	p.la, p.hasLA = buf.String(), true
	return p.la, true
}

func (p *parser) advance() {
	p.hasLA = false
}

func (p *parser) errorf(kind ast.ErrorKind, line, endLine int, name, format string, args ...interface{}) {
	p.errors = append(p.errors, &ast.Error{
		Kind:    kind,
		Line:    line,
		EndLine: endLine,
		Name:    name,
		Msg:     fmt.Sprintf(format, args...),
	})
}

func isBlank(l string) bool {
	return strings.TrimSpace(l) == ""
}

func isFence(l string) bool {
	return strings.HasPrefix(l, "```") && !strings.Contains(l[3:], "`")
}

func isDirective(l string) bool {
	return strings.HasPrefix(l, "%%%")
}

// headerLevel returns the number of leading octothorpes of a header line,
// or 0 if l is not a header.
func headerLevel(l string) int {
	n := 0
	for n < len(l) && l[n] == '#' {
		n++
	}
	if n == 0 || n > 6 {
		return 0
	}
	if n < len(l) && l[n] != ' ' && l[n] != '\t' {
		return 0
	}
	return n
}

// trimClosing removes an optional closing sequence of octothorpes.
// The sequence must be the whole text or be preceded by a space.
func trimClosing(text string) string {
	t := strings.TrimRight(text, "#")
	switch {
	case t == "":
		return ""
	case len(t) == len(text):
		return text
	case strings.HasSuffix(t, " ") || strings.HasSuffix(t, "\t"):
		return strings.TrimRight(t, " \t")
	}
	return text
}

// splitAnchor cuts a trailing {#id} token from header text.
// Braces that close before the end of the text are not an anchor.
func splitAnchor(text string) (rest, id, err string) {
	i := strings.LastIndex(text, "{#")
	if i < 0 {
		return text, "", ""
	}
	tail := text[i+2:]
	j := strings.IndexByte(tail, '}')
	switch {
	case j < 0:
		return text, "", "anchor is not terminated"
	case j != len(tail)-1:
		return text, "", ""
	}
	id = tail[:j]
	if !isID(id) {
		return text, "", fmt.Sprintf("invalid anchor id %q", id)
	}
	return strings.TrimRight(text[:i], " \t"), id, ""
}

func isID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || strings.ContainsRune(`"'<>&{}#`, r) {
			return false
		}
	}
	return true
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (r == '-' || unicode.IsDigit(r)):
		default:
			return false
		}
	}
	return true
}
