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

package urlenc

import "testing"

type smallcase struct {
	in   string
	want string
}

var formSmall = []smallcase{
	{"15 rue de la paix Paris", "15+rue+de+la+paix+Paris"},
	{"(1+2)", "%281%2B2%29"},
	{"a&b=c", "a%26b%3Dc"},
	{"café", "caf%C3%A9"},
	{"", ""},
}

var strictSmall = []smallcase{
	{"(1+2)", "%281%2B2%29"},
	{"15 rue de la paix", "15%20rue%20de%20la%20paix"},
	{`\frac{1}{2}`, "%5Cfrac%7B1%7D%7B2%7D"},
	{"a-b_c.d~e", "a-b_c.d~e"},
	{"x^2", "x%5E2"},
	{"café", "caf%C3%A9"},
	{"", ""},
}

func TestForm(t *testing.T) {
	for i, test := range formSmall {
		if got := Form(test.in); got != test.want {
			t.Errorf("case %d, in %q,\nwant %s,\ngot %s", i, test.in, test.want, got)
		}
	}
}

func TestStrict(t *testing.T) {
	for i, test := range strictSmall {
		if got := Strict(test.in); got != test.want {
			t.Errorf("case %d, in %q,\nwant %s,\ngot %s", i, test.in, test.want, got)
		}
	}
}

// The two encodings must disagree on spaces and agree elsewhere.
func TestFormStrictDivergence(t *testing.T) {
	const in = "1 + 2"
	form, strict := Form(in), Strict(in)
	if form != "1+%2B+2" {
		t.Errorf("Form(%q) = %s", in, form)
	}
	if strict != "1%20%2B%202" {
		t.Errorf("Strict(%q) = %s", in, strict)
	}
}
