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

package directive

import (
	"strings"

	"akhil.cc/mdc/urlenc"
)

// DefaultFormulaBase is the image service used when Formula.Base is empty.
const DefaultFormulaBase = "http://latex.codecogs.com/png.download?"

// Formula renders a LaTeX expression as an image served by an equation
// rendering service. The expression is strictly percent-encoded into the
// query string, so "(1+2)" is requested as "%281%2B2%29".
type Formula struct {
	Base string
}

func (f Formula) Render(body string) (string, error) {
	base := f.Base
	if base == "" {
		base = DefaultFormulaBase
	}
	expr := strings.TrimSuffix(body, "\n")
	return `<img src="` + base + urlenc.Strict(expr) + `" />`, nil
}
