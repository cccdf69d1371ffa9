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

package compiler_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"akhil.cc/mdc/ast"
	"akhil.cc/mdc/compiler"
	"akhil.cc/mdc/directive"
	"akhil.cc/mdc/gen/html"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type smallcase struct {
	name string
	in   string
	want string
}

var documents = []smallcase{
	{"empty.md", "", ""},
	{"file.md", "This is **bold**", "<p>This is <strong>bold</strong></p>\n"},
	{"file.md", "This is ~~deleted~~ text", "<p>This is <s>deleted</s> text</p>\n"},
	{"file.md", "![Alt text](/path/to/img.jpg)", "<p><img src=\"/path/to/img.jpg\" alt=\"Alt text\" /></p>\n"},
	{"file.markdown", "## HEADER ## {#ID}", "<h2 id=\"ID\">HEADER</h2>\n"},
	{"file.markdown", "``` java\nnop\n```\n", "<pre><code class=\"java\">nop\n</code></pre>\n"},
	{"file.markdown", "<@15 rue de la paix Paris>", "<p><a href=\"https://maps.google.com/maps?q=15+rue+de+la+paix+Paris\">15 rue de la paix Paris</a></p>\n"},
	{"file.markdown", "%%% formula\n(1+2)\n%%%\n", "<img src=\"http://latex.codecogs.com/png.download?%281%2B2%29\" />"},
	{"file.markdown", "%%% table\nH1|H2|H3\n%%%\n", "<table>\n<tr><th>H1</th><th>H2</th><th>H3</th></tr>\n</table>\n"},
	{"file.markdown", "```\nnop\n```\n", "<pre><code>nop\n</code></pre>\n"},
	{"file.markdown", "%%% table\nH1|H2\na|b\nc|d\n%%%\n", "<table>\n<tr><th>H1</th><th>H2</th></tr>\n<tr><td>a</td><td>b</td></tr>\n<tr><td>c</td><td>d</td></tr>\n</table>\n"},
	{"file.markdown", "# Title\n\nSome *text*.\n\n%%% formula\nx^2\n%%%\nAfter\n",
		"<h1>Title</h1>\n<p>Some <em>text</em>.</p>\n<img src=\"http://latex.codecogs.com/png.download?x%5E2\" /><p>After</p>\n"},
	{"file.md", "one\ntwo\n\nthree", "<p>one\ntwo</p>\n<p>three</p>\n"},
	{"file.md", "\n\n\n", ""},
}

func TestCompile(t *testing.T) {
	c := compiler.New()
	for i, test := range documents {
		got, err := c.Compile(compiler.NewSourceDocument(test.name, test.in))
		if err != nil {
			t.Errorf("case %d, in %q: unexpected error %v", i, test.in, err)
			continue
		}
		if got != test.want {
			t.Errorf("case %d, in %q,\nwant %q,\ngot  %q", i, test.in, test.want, got)
		}
	}
}

// The minimal dialect leaves the extensions alone.
var minimal = []smallcase{
	{"file.md", "## HEADER ## {#ID}", "<h2>HEADER ## {#ID}</h2>\n"},
	{"file.md", "<@15 rue de la paix Paris>", "<p><@15 rue de la paix Paris></p>\n"},
	{"file.md", "%%% nope\nbody\n%%%", "<p>%%% nope\nbody\n%%%</p>\n"},
	{"file.md", "``` go\nx := 1\n```", "<pre><code class=\"go\">x := 1\n</code></pre>\n"},
}

func TestCompileMinimal(t *testing.T) {
	c := compiler.New()
	for i, test := range minimal {
		got, err := c.Compile(compiler.NewSourceDocument(test.name, test.in))
		require.NoError(t, err, "case %d", i)
		assert.Equal(t, test.want, got, "case %d", i)
	}
}

func TestEncodingsDiverge(t *testing.T) {
	c := compiler.New()
	addr, err := c.Compile(compiler.NewSourceDocument("a.markdown", "<@1 + 2>"))
	require.NoError(t, err)
	formula, err := c.Compile(compiler.NewSourceDocument("a.markdown", "%%% formula\n1 + 2\n%%%\n"))
	require.NoError(t, err)
	assert.Contains(t, addr, "q=1+%2B+2\"")
	assert.Contains(t, formula, "?1%20%2B%202\"")
}

func TestIdempotent(t *testing.T) {
	c := compiler.New()
	doc := compiler.NewSourceDocument("file.markdown", "# T {#t}\n\n**a** ~~b~~ <@x y>\n\n%%% table\na|b\n%%%\n")
	first, err := c.Compile(doc)
	require.NoError(t, err)
	second, err := c.Compile(doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestConcurrentCompile(t *testing.T) {
	c := compiler.New()
	doc := compiler.NewSourceDocument("file.markdown", "%%% formula\n(1+2)\n%%%\n%%% table\nH1|H2|H3\n%%%\n")
	want, err := c.Compile(doc)
	require.NoError(t, err)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.Compile(doc)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}

func TestUnknownDirective(t *testing.T) {
	c := compiler.New()
	got, err := c.Compile(compiler.NewSourceDocument("f.markdown", "intro\n\n%%% chart\n1,2\n%%%\n"))
	require.Error(t, err)
	assert.Empty(t, got)
	assert.True(t, errors.Is(err, ast.ErrUnknownDirective))
	var e *ast.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, ast.UnknownDirective, e.Kind)
	assert.Equal(t, "chart", e.Name)
	assert.Equal(t, 3, e.Line)
	assert.Equal(t, 5, e.EndLine)
}

func TestUnknownDirectivePolicies(t *testing.T) {
	src := "%%% chart\n<1>\n%%%\n"
	skip := compiler.New(compiler.WithUnknownDirective(html.Skip))
	got, err := skip.Compile(compiler.NewSourceDocument("f.markdown", src))
	require.NoError(t, err)
	assert.Equal(t, "", got)

	pass := compiler.New(compiler.WithUnknownDirective(html.Passthrough))
	got, err = pass.Compile(compiler.NewSourceDocument("f.markdown", src))
	require.NoError(t, err)
	assert.Equal(t, "<pre>&lt;1&gt;\n</pre>\n", got)
}

func TestCustomDirective(t *testing.T) {
	shout := directive.RendererFunc(func(body string) (string, error) {
		return "<p>" + strings.ToUpper(strings.TrimSpace(body)) + "</p>\n", nil
	})
	c := compiler.New(compiler.WithDirective("shout", shout))
	got, err := c.Compile(compiler.NewSourceDocument("f.markdown", "%%% shout\nhey\n%%%\n"))
	require.NoError(t, err)
	assert.Equal(t, "<p>HEY</p>\n", got)
	assert.Equal(t, []string{"formula", "shout", "table"}, c.Registry().Names())
	assert.Equal(t, []string{"formula", "table"}, directive.Default().Names())
}

func TestRendererError(t *testing.T) {
	boom := errors.New("boom")
	c := compiler.New(compiler.WithDirective("bad", directive.RendererFunc(func(string) (string, error) {
		return "", boom
	})))
	got, err := c.Compile(compiler.NewSourceDocument("f.markdown", "text\n\n%%% bad\n%%%\n"))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, got)
}

func TestMalformedDocuments(t *testing.T) {
	cases := []struct {
		in   string
		kind ast.ErrorKind
		line int
	}{
		{"%%% formula\n(1+2)\n", ast.MalformedDirectiveBlock, 1},
		{"text\n\n%%%\nbody\n%%%\n", ast.MalformedDirectiveBlock, 3},
		{"``` go\nfmt.Println()\n", ast.InvalidFencedCodeBlock, 1},
		{"# Title {#bad id}", ast.MalformedHeadingAnchor, 1},
		{"para\n## Title {#open", ast.MalformedHeadingAnchor, 2},
	}
	c := compiler.New()
	for i, test := range cases {
		got, err := c.Compile(compiler.NewSourceDocument("f.markdown", test.in))
		require.Error(t, err, "case %d", i)
		assert.Empty(t, got, "case %d", i)
		assert.True(t, ast.IsKind(err, test.kind), "case %d: %v", i, err)
		var e *ast.Error
		require.True(t, errors.As(err, &e), "case %d", i)
		assert.Equal(t, test.line, e.Line, "case %d", i)
	}
}

func TestAllErrorsReported(t *testing.T) {
	c := compiler.New()
	_, err := c.Compile(compiler.NewSourceDocument("f.markdown", "# A {#}\n\n``` go\nunterminated\n"))
	require.Error(t, err)
	assert.True(t, ast.IsKind(err, ast.MalformedHeadingAnchor))
	assert.True(t, ast.IsKind(err, ast.InvalidFencedCodeBlock))
}

func TestDialects(t *testing.T) {
	assert.Equal(t, compiler.Minimal, compiler.NewSourceDocument("a.md", "").Dialect)
	assert.Equal(t, compiler.Extended, compiler.NewSourceDocument("a.MARKDOWN", "").Dialect)
	assert.Equal(t, compiler.Minimal, compiler.NewSourceDocument("a.txt", "").Dialect)

	c := compiler.New(compiler.WithSuffix("mdown", compiler.Extended))
	assert.Equal(t, compiler.Extended, c.Source("x.mdown", "").Dialect)
	assert.True(t, c.Handles("x.mdown"))
	assert.False(t, c.Handles("x.txt"))
	assert.False(t, compiler.New().Handles("x.mdown"))

	d, ok := compiler.ParseDialect("Extended")
	assert.True(t, ok)
	assert.Equal(t, compiler.Extended, d)
	_, ok = compiler.ParseDialect("gfm")
	assert.False(t, ok)
}
