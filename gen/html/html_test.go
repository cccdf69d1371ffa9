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

package html

import (
	"bytes"
	"strings"
	"testing"

	"akhil.cc/mdc/ast"
	"akhil.cc/mdc/directive"
	"akhil.cc/mdc/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xhtml "golang.org/x/net/html"
)

const extended = parser.Anchors | parser.AddressLinks | parser.Directives

type smallcase struct {
	in   string
	want string
}

var escapeSmall = []smallcase{
	{"`n >= 3`", "<p><code>n &gt;= 3</code></p>\n"},
	{"*`n >= 3`*", "<p><em><code>n &gt;= 3</code></em></p>\n"},
	{"**`n >= 3`**", "<p><strong><code>n &gt;= 3</code></strong></p>\n"},
	{"**`n`**", "<p><strong><code>n</code></strong></p>\n"},
	{"A**`n >= 3`**B**`n`**C", "<p>A<strong><code>n &gt;= 3</code></strong>B<strong><code>n</code></strong>C</p>\n"},
	{"```html\n<a href=\"x\">&</a>\n```", "<pre><code class=\"html\">&lt;a href=&quot;x&quot;&gt;&amp;&lt;/a&gt;\n</code></pre>\n"},
	{"<em>trusted</em>", "<p><em>trusted</em></p>\n"},
}

func gen(t *testing.T, src string, reg *directive.Registry) string {
	t.Helper()
	f, err := parser.Parse(strings.NewReader(src), extended)
	require.NoError(t, err)
	out, err := Gen(f, reg).Output()
	require.NoError(t, err)
	return string(out)
}

func TestEscape(t *testing.T) {
	for i, test := range escapeSmall {
		got := gen(t, test.in, nil)
		if test.want != got {
			t.Errorf("case %d, in %q,\nwant %s, \ngot %s", i, test.in, test.want, got)
		}
	}
}

var spanSmall = []smallcase{
	{"[a **b**](/x)", "<p><a href=\"/x\">a <strong>b</strong></a></p>\n"},
	{"<@Place de l'Étoile>", "<p><a href=\"https://maps.google.com/maps?q=Place+de+l%27%C3%89toile\">Place de l'Étoile</a></p>\n"},
	{"~~*x*~~", "<p><s><em>x</em></s></p>\n"},
	{"# Title {#top}\n### Sub ###", "<h1 id=\"top\">Title</h1>\n<h3>Sub</h3>\n"},
}

func TestSpans(t *testing.T) {
	for i, test := range spanSmall {
		assert.Equal(t, test.want, gen(t, test.in, nil), "case %d", i)
	}
}

func TestRunWritesStdout(t *testing.T) {
	f := parser.MustParse(strings.NewReader("a\n\nb"), 0)
	var out bytes.Buffer
	g := Gen(f, nil)
	g.Stdout = &out
	require.NoError(t, g.Run())
	assert.Equal(t, "<p>a</p>\n<p>b</p>\n", out.String())

	_, err := g.Output()
	assert.EqualError(t, err, "Stdout already set")
}

func TestCheckWritesNothing(t *testing.T) {
	f := parser.MustParse(strings.NewReader("before\n\n%%% one\n%%%\n%%% two\n%%%\n"), extended)
	var out bytes.Buffer
	g := Gen(f, directive.Default())
	g.Stdout = &out
	err := g.Run()
	require.Error(t, err)
	assert.Zero(t, out.Len())
	assert.True(t, ast.IsKind(err, ast.UnknownDirective))
	assert.Contains(t, err.Error(), `"one"`)
	assert.Contains(t, err.Error(), `"two"`)
}

func TestPolicies(t *testing.T) {
	f := parser.MustParse(strings.NewReader("%%% x\na & b\n%%%\n"), extended)
	for _, test := range []struct {
		p    UnknownPolicy
		want string
	}{
		{Skip, ""},
		{Passthrough, "<pre>a &amp; b\n</pre>\n"},
	} {
		g := Gen(f, directive.Default())
		g.Unknown = test.p
		out, err := g.Output()
		require.NoError(t, err, test.p.String())
		assert.Equal(t, test.want, string(out), test.p.String())
	}
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]UnknownPolicy{"": Fail, "FAIL": Fail, "skip": Skip, " passthrough ": Passthrough} {
		got, err := ParsePolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParsePolicy("ignore")
	assert.Error(t, err)
}

// The generated table must parse back into the expected element structure.
func TestTableStructure(t *testing.T) {
	out := gen(t, "%%% table\nH1|H2|H3\n1|2|3\n4|5|6\n%%%\n", directive.Default())
	doc, err := xhtml.Parse(strings.NewReader(out))
	require.NoError(t, err)

	counts := map[string]int{}
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode {
			counts[n.Data]++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	assert.Equal(t, 1, counts["table"])
	assert.Equal(t, 3, counts["tr"])
	assert.Equal(t, 3, counts["th"])
	assert.Equal(t, 6, counts["td"])
}

func TestImageAttributes(t *testing.T) {
	out := gen(t, "%%% formula\n\\frac{a}{b}\n%%%\n![alt](/i.png)", directive.Default())
	z := xhtml.NewTokenizer(strings.NewReader(out))
	var srcs []string
	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			break
		}
		tok := z.Token()
		if tok.Data != "img" {
			continue
		}
		assert.Equal(t, xhtml.SelfClosingTagToken, tok.Type)
		for _, a := range tok.Attr {
			if a.Key == "src" {
				srcs = append(srcs, a.Val)
			}
		}
	}
	assert.Equal(t, []string{"http://latex.codecogs.com/png.download?%5Cfrac%7Ba%7D%7Bb%7D", "/i.png"}, srcs)
}
