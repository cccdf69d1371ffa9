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

// Package gen holds generator support shared by output formats.
package gen // import "akhil.cc/mdc/gen"

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	sq "github.com/kballard/go-shellquote"
)

// Command is a directive renderer backed by an external process. The
// command line is split according to the Bourne shell's word-splitting
// rules; the directive body is written to the process's standard input
// and its standard output becomes the fragment.
//
// Command satisfies directive.Renderer.
type Command struct {
	// Line is the command line, for example "dot -Tsvg".
	Line string
	// Ctx, if set, kills the process when done.
	Ctx context.Context
	// Stderr receives the process's standard error. Nil discards it.
	Stderr io.Writer
}

// Render runs the command with body on its standard input and waits for
// it to finish. It returns any execution errors encountered during the process.
func (c *Command) Render(body string) (string, error) {
	words, err := sq.Split(c.Line)
	if err != nil {
		return "", err
	}
	if len(words) == 0 {
		return "", fmt.Errorf("No valid commands: '%q'", c.Line)
	}
	var cmd *exec.Cmd
	if c.Ctx == nil {
		cmd = exec.Command(words[0], words[1:]...)
	} else {
		cmd = exec.CommandContext(c.Ctx, words[0], words[1:]...)
	}
	var out bytes.Buffer
	cmd.Stdin = strings.NewReader(body)
	cmd.Stdout = &out
	if c.Stderr != nil {
		cmd.Stderr = c.Stderr
	}
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w", words[0], err)
	}
	return out.String(), nil
}
