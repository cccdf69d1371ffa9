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

package parser

import (
	"strings"

	"akhil.cc/mdc/ast"
)

// Inline splits a run of text into spans, left to right.
// Delimited spans are resolved against the source text only, so markup
// produced for one span is never matched again by another.
//
// Recognized constructs, in order of precedence at a given position:
//
//      \c            escaped punctuation
//      `code`        ast.Raw
//      **text**      ast.Bold
//      *text* _text_ ast.Italic
//      ~~text~~      ast.Strikethrough
//      ![alt](src)   *ast.Image
//      [text](href)  *ast.Link
//      <@address>    ast.Address (AddressLinks mode)
//
// An opener without a matching closer is literal text.
func Inline(s string, mode Mode) []ast.Span {
	p := &inlineParser{s: s, mode: mode}
	for i := 0; i < len(s); {
		var parse func(s string, i int) (ast.Span, int, bool)
		switch s[i] {
		case '\\':
			parse = parseEscape
		case '`':
			parse = parseCodeSpan
		case '*':
			if strings.HasPrefix(s[i:], "**") {
				parse = p.delimited("**", ast.Bold)
			} else {
				parse = p.delimited("*", ast.Italic)
			}
		case '_':
			parse = p.delimited("_", ast.Italic)
		case '~':
			if strings.HasPrefix(s[i:], "~~") {
				parse = p.delimited("~~", ast.Strikethrough)
			}
		case '!':
			parse = parseImage
		case '[':
			parse = p.parseLink
		case '<':
			if mode&AddressLinks != 0 {
				parse = parseAddress
			}
		}
		if parse != nil {
			if x, end, ok := parse(s, i); ok {
				p.emit(i)
				p.push(x)
				i = end
				p.skip(i)
				continue
			}
		}
		i++
	}
	p.emit(len(s))
	return p.list
}

type inlineParser struct {
	s       string
	mode    Mode
	emitted int // s[:emitted] has been emitted into list
	list    []ast.Span
}

func (p *inlineParser) emit(i int) {
	if p.emitted < i {
		p.push(ast.Plain(p.s[p.emitted:i]))
		p.emitted = i
	}
}

func (p *inlineParser) skip(i int) {
	p.emitted = i
}

// push appends x to the list, merging adjacent plain text.
func (p *inlineParser) push(x ast.Span) {
	if t, ok := x.(ast.Plain); ok && len(p.list) > 0 {
		if last, ok := p.list[len(p.list)-1].(ast.Plain); ok {
			p.list[len(p.list)-1] = last + t
			return
		}
	}
	p.list = append(p.list, x)
}

// delimited returns a parser for text enclosed in delim on both sides.
// The opener must not be followed by a space, the closer must not be
// preceded by one. A single character closer that is part of a longer
// run of the same character is skipped. Underscores never open or close
// inside a word.
func (p *inlineParser) delimited(delim string, kind ast.DKind) func(string, int) (ast.Span, int, bool) {
	intraword := delim != "_"
	return func(s string, i int) (ast.Span, int, bool) {
		beg := i + len(delim)
		if beg >= len(s) || isSpace(s[beg]) {
			return nil, 0, false
		}
		if !intraword && i > 0 && isAlnum(s[i-1]) {
			return nil, 0, false
		}
		for j := beg + 1; j+len(delim) <= len(s); j++ {
			if !strings.HasPrefix(s[j:], delim) {
				continue
			}
			if len(delim) == 1 && j+1 < len(s) && s[j+1] == delim[0] {
				for j+1 < len(s) && s[j+1] == delim[0] {
					j++
				}
				continue
			}
			if isSpace(s[j-1]) {
				continue
			}
			if !intraword && j+1 < len(s) && isAlnum(s[j+1]) {
				continue
			}
			return &ast.Format{Kind: kind, Spans: Inline(s[beg:j], p.mode)}, j + len(delim), true
		}
		return nil, 0, false
	}
}

func (p *inlineParser) parseLink(s string, i int) (ast.Span, int, bool) {
	text, href, end, ok := bracketed(s, i+1)
	if !ok {
		return nil, 0, false
	}
	return &ast.Link{Href: href, Spans: Inline(text, p.mode)}, end, true
}

func parseImage(s string, i int) (ast.Span, int, bool) {
	if !strings.HasPrefix(s[i:], "![") {
		return nil, 0, false
	}
	alt, src, end, ok := bracketed(s, i+2)
	if !ok {
		return nil, 0, false
	}
	return &ast.Image{Src: src, Alt: alt}, end, true
}

// bracketed parses "text](dest)" starting at i, the index just past "[".
func bracketed(s string, i int) (text, dest string, end int, ok bool) {
	k := strings.IndexByte(s[i:], ']')
	if k < 0 || !strings.HasPrefix(s[i+k:], "](") {
		return "", "", 0, false
	}
	text = s[i : i+k]
	rest := i + k + 2
	m := strings.IndexByte(s[rest:], ')')
	if m < 0 {
		return "", "", 0, false
	}
	dest = strings.TrimSpace(s[rest : rest+m])
	if strings.ContainsAny(dest, " \t\n") {
		return "", "", 0, false
	}
	return text, dest, rest + m + 1, true
}

// parseAddress parses "<@free text address>".
func parseAddress(s string, i int) (ast.Span, int, bool) {
	if !strings.HasPrefix(s[i:], "<@") {
		return nil, 0, false
	}
	k := strings.IndexAny(s[i+2:], ">\n")
	if k <= 0 || s[i+2+k] != '>' {
		return nil, 0, false
	}
	addr := strings.TrimSpace(s[i+2 : i+2+k])
	if addr == "" {
		return nil, 0, false
	}
	return ast.Address(addr), i + 2 + k + 1, true
}

func parseEscape(s string, i int) (ast.Span, int, bool) {
	if i+1 < len(s) && isEscapable(s[i+1]) {
		return ast.Plain(s[i+1 : i+2]), i + 2, true
	}
	return nil, 0, false
}

func parseCodeSpan(s string, i int) (ast.Span, int, bool) {
	// Count leading backticks. Need to find that many again.
	n := 1
	for i+n < len(s) && s[i+n] == '`' {
		n++
	}
	for end := i + n; end < len(s); {
		if s[end] != '`' {
			end++
			continue
		}
		estart := end
		for end < len(s) && s[end] == '`' {
			end++
		}
		if end-estart == n {
			text := strings.ReplaceAll(s[i+n:estart], "\n", " ")
			if len(text) >= 2 && text[0] == ' ' && text[len(text)-1] == ' ' && strings.Trim(text, " ") != "" {
				text = text[1 : len(text)-1]
			}
			return ast.Raw(text), end, true
		}
	}
	// No match, so none of these backticks count.
	return ast.Plain(s[i : i+n]), i + n, true
}

func isEscapable(c byte) bool {
	return strings.IndexByte("\\`*_~{}[]()#+-.!<>|%@", c) >= 0
}

func isAlnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}
