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

// Package directive holds the renderers for %%% directive blocks and the
// registry that maps directive names to them.
//
// A renderer receives the raw body of a block, every line ending in a
// newline, and returns the HTML fragment that replaces the block. The
// fragment is spliced into the document verbatim.
package directive // import "akhil.cc/mdc/directive"

import (
	"sort"
)

// Renderer renders the body of a directive block into an HTML fragment.
// Implementations must not keep state between calls.
type Renderer interface {
	Render(body string) (string, error)
}

// RendererFunc adapts an ordinary function to a Renderer.
type RendererFunc func(body string) (string, error)

func (f RendererFunc) Render(body string) (string, error) {
	return f(body)
}

// Registry maps directive names to renderers. Names are case sensitive.
//
// A Registry is never modified after it is built, so it may be shared by
// any number of goroutines.
type Registry struct {
	m map[string]Renderer
}

// NewRegistry returns a registry holding a copy of rs.
func NewRegistry(rs map[string]Renderer) *Registry {
	m := make(map[string]Renderer, len(rs))
	for name, r := range rs {
		if r != nil {
			m[name] = r
		}
	}
	return &Registry{m: m}
}

// Default returns a registry with the built-in formula and table renderers.
func Default() *Registry {
	return NewRegistry(map[string]Renderer{
		"formula": Formula{},
		"table":   Table{},
	})
}

// With returns a new registry that also maps name to r, replacing any
// renderer already registered under name. The receiver is left unchanged.
func (reg *Registry) With(name string, r Renderer) *Registry {
	m := make(map[string]Renderer, len(reg.m)+1)
	for k, v := range reg.m {
		m[k] = v
	}
	m[name] = r
	return NewRegistry(m)
}

// Lookup returns the renderer registered under name.
func (reg *Registry) Lookup(name string) (Renderer, bool) {
	if reg == nil {
		return nil, false
	}
	r, ok := reg.m[name]
	return r, ok
}

// Names returns the registered names in sorted order.
func (reg *Registry) Names() []string {
	if reg == nil {
		return nil
	}
	names := make([]string, 0, len(reg.m))
	for name := range reg.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
