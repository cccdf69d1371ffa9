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

// Package html converts an AST file structure into html output.
// Text inside code blocks and code spans is automatically escaped; all
// other text is trusted and passed through.
// Directive bodies are handed to the renderer registered under their name.
//
// AST nodes correspond to the following HTML output:
// 	Paragraph                   <p></p>\n
// 	Header                      <h1></h1>\n ... <h6></h6>\n, with id="" when anchored
// 	FencedCode                  <pre><code class=""></code></pre>\n
// 	Directive                   the registered renderer's fragment, verbatim
// 	Blank                       nothing
// 	Italic                      <em></em>
// 	Bold                        <strong></strong>
// 	Strikethrough               <s></s>
// 	Raw                         <code></code>
// 	Image                       <img src="" alt="" />
// 	Link                        <a href=""></a>
// 	Address                     <a href="https://maps.google.com/maps?q="></a>
package html // import "akhil.cc/mdc/gen/html"

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"akhil.cc/mdc/ast"
	"akhil.cc/mdc/directive"
	"akhil.cc/mdc/urlenc"
)

// MapsBase prefixes the form-encoded address of an address link.
const MapsBase = "https://maps.google.com/maps?q="

// UnknownPolicy says what to do with a directive whose name is not registered.
type UnknownPolicy int

const (
	// Fail reports an ast.UnknownDirective error.
	Fail UnknownPolicy = iota
	// Skip emits nothing for the block.
	Skip
	// Passthrough emits the escaped body inside <pre></pre>.
	Passthrough
)

// ParsePolicy maps "fail", "skip" and "passthrough" to their policy.
func ParsePolicy(s string) (UnknownPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail":
		return Fail, nil
	case "skip":
		return Skip, nil
	case "passthrough":
		return Passthrough, nil
	}
	return Fail, fmt.Errorf("unknown directive policy %q", s)
}

func (p UnknownPolicy) String() string {
	switch p {
	case Skip:
		return "skip"
	case Passthrough:
		return "passthrough"
	}
	return "fail"
}

type stickyCountWriter struct {
	n   int64
	err error
	w   io.Writer
}

func (c *stickyCountWriter) Write(p []byte) (n int, err error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err = c.w.Write(p)
	c.err = err
	c.n += int64(n)
	return
}

func (c *stickyCountWriter) WriteString(s string) (n int, err error) {
	return c.Write([]byte(s))
}

// Generator represents a non-reusable HTML output generator for an *ast.File.
type Generator struct {
	// Stdout receives the HTML output.
	Stdout io.Writer
	// Registry resolves directive names. A nil Registry knows no directives.
	Registry *directive.Registry
	// Unknown is applied to directives missing from Registry.
	Unknown UnknownPolicy

	file *ast.File
}

// Gen returns the Generator struct to convert the given file into HTML output.
func Gen(file *ast.File, reg *directive.Registry) *Generator {
	return &Generator{file: file, Registry: reg}
}

// Check reports every directive of the file that the generator cannot
// resolve. It writes nothing.
func (g *Generator) Check() error {
	if g.Unknown != Fail {
		return nil
	}
	var errs []error
	_, err := ast.Walk(g.file, func(n ast.Node) (ast.Node, error) {
		if d, ok := n.(*ast.Directive); ok {
			if _, ok := g.Registry.Lookup(d.Name); !ok {
				errs = append(errs, &ast.Error{
					Kind:    ast.UnknownDirective,
					Line:    d.Line,
					EndLine: d.EndLine,
					Name:    d.Name,
					Msg:     "no renderer registered",
				})
			}
		}
		return n, nil
	})
	if err != nil {
		return err
	}
	return errors.Join(errs...)
}

// Run checks the file and writes its HTML to Stdout, block by block in
// source order. Nothing is written if the check fails.
func (g *Generator) Run() error {
	if g.Stdout == nil {
		g.Stdout = io.Discard
	}
	if err := g.Check(); err != nil {
		return err
	}
	return g.gen()
}

// Output runs the generator and returns its output.
// On error the output is discarded.
func (g *Generator) Output() ([]byte, error) {
	if g.Stdout != nil {
		return nil, fmt.Errorf("Stdout already set")
	}
	var stdout bytes.Buffer
	g.Stdout = &stdout
	if err := g.Run(); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

func (g *Generator) gen() error {
	cw := &stickyCountWriter{0, nil, g.Stdout}
	for _, b := range g.file.List {
		switch t := b.(type) {
		case *ast.Paragraph:
			cw.WriteString("<p>")
			g.spans(t.Spans, cw)
			cw.WriteString("</p>\n")
		case *ast.Header:
			tag := "h" + strconv.Itoa(t.Level)
			if t.ID != "" {
				fmt.Fprintf(cw, "<%s id=\"%s\">", tag, t.ID)
			} else {
				cw.WriteString("<" + tag + ">")
			}
			cw.WriteString(t.Text + "</" + tag + ">\n")
		case *ast.FencedCode:
			if t.Lang != "" {
				fmt.Fprintf(cw, "<pre><code class=\"%s\">", t.Lang)
			} else {
				cw.WriteString("<pre><code>")
			}
			cw.WriteString(escape(t.Body) + "</code></pre>\n")
		case *ast.Directive:
			if err := g.directive(t, cw); err != nil {
				return err
			}
		case *ast.Blank:
		}
	}
	return cw.err
}

func (g *Generator) directive(d *ast.Directive, w io.StringWriter) error {
	r, ok := g.Registry.Lookup(d.Name)
	if !ok {
		switch g.Unknown {
		case Skip:
			return nil
		case Passthrough:
			_, err := w.WriteString("<pre>" + escape(d.Raw) + "</pre>\n")
			return err
		}
		return &ast.Error{Kind: ast.UnknownDirective, Line: d.Line, EndLine: d.EndLine, Name: d.Name, Msg: "no renderer registered"}
	}
	frag, err := r.Render(d.Raw)
	if err != nil {
		return fmt.Errorf("lines %d-%d: directive %q: %w", d.Line, d.EndLine, d.Name, err)
	}
	_, err = w.WriteString(frag)
	return err
}

const (
	italics = iota
	italicsClose
	bold
	boldClose
	strikethrough
	strikethroughClose
	code
	codeClose
	anchor
	anchorClose
)

var fstr = [...]string{
	italics:            "<em>",
	italicsClose:       "</em>",
	bold:               "<strong>",
	boldClose:          "</strong>",
	strikethrough:      "<s>",
	strikethroughClose: "</s>",
	code:               "<code>",
	codeClose:          "</code>",
	anchor:             `<a href="%s">`,
	anchorClose:        "</a>",
}

var formatTag = map[ast.DKind]int{
	ast.Italic:        italics,
	ast.Bold:          bold,
	ast.Strikethrough: strikethrough,
}

func (g *Generator) spans(spans []ast.Span, w io.StringWriter) {
	for _, sp := range spans {
		switch t := sp.(type) {
		case ast.Plain:
			w.WriteString(string(t))
		case *ast.Format:
			tag := formatTag[t.Kind]
			w.WriteString(fstr[tag])
			g.spans(t.Spans, w)
			w.WriteString(fstr[tag+1])
		case ast.Raw:
			w.WriteString(fstr[code] + escape(string(t)) + fstr[codeClose])
		case *ast.Image:
			w.WriteString(`<img src="` + t.Src + `" alt="` + t.Alt + `" />`)
		case *ast.Link:
			w.WriteString(fmt.Sprintf(fstr[anchor], t.Href))
			g.spans(t.Spans, w)
			w.WriteString(fstr[anchorClose])
		case ast.Address:
			w.WriteString(fmt.Sprintf(fstr[anchor], MapsBase+urlenc.Form(string(t))))
			w.WriteString(string(t) + fstr[anchorClose])
		}
	}
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escape(s string) string {
	return escaper.Replace(s)
}
