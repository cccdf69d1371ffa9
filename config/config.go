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

// Package config loads the YAML configuration of the mdc tool.
//
// A configuration file looks like this; every key is optional.
//
//	dialects:
//	  .md: minimal
//	  .markdown: extended
//	  .mdown: extended
//	unknown_directive: fail     # fail, skip or passthrough
//	formula_base: http://latex.codecogs.com/png.download?
//	exec:
//	  dot: dot -Tsvg            # %%% dot blocks are piped through dot
//	server:
//	  addr: localhost:8080
//	  root: ./site
//	log:
//	  level: info
//	  format: text
package config // import "akhil.cc/mdc/config"

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"akhil.cc/mdc/compiler"
	"akhil.cc/mdc/directive"
	"akhil.cc/mdc/gen"
	"akhil.cc/mdc/gen/html"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Dialects         map[string]string `yaml:"dialects"`
	UnknownDirective string            `yaml:"unknown_directive"`
	FormulaBase      string            `yaml:"formula_base"`
	Exec             map[string]string `yaml:"exec"`
	Server           Server            `yaml:"server"`
	Log              Log               `yaml:"log"`
}

type Server struct {
	Addr string `yaml:"addr"`
	Root string `yaml:"root"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		UnknownDirective: html.Fail.String(),
		FormulaBase:      directive.DefaultFormulaBase,
		Server:           Server{Addr: "localhost:8080", Root: "."},
		Log:              Log{Level: "info", Format: "text"},
	}
}

// Load reads the file at path over the defaults. An empty path yields Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(b []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	for suffix, name := range c.Dialects {
		if _, ok := compiler.ParseDialect(name); !ok {
			return fmt.Errorf("dialects: %s: unknown dialect %q", suffix, name)
		}
	}
	if _, err := html.ParsePolicy(c.UnknownDirective); err != nil {
		return fmt.Errorf("unknown_directive: %w", err)
	}
	for name, line := range c.Exec {
		if name == "" || line == "" {
			return fmt.Errorf("exec: directive %q needs a command", name)
		}
	}
	return nil
}

// CompilerOptions translates the configuration into compiler options.
// Exec directives run under ctx and write their standard error to stderr.
func (c Config) CompilerOptions(ctx context.Context, stderr io.Writer) ([]compiler.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	policy, _ := html.ParsePolicy(c.UnknownDirective)
	opts := []compiler.Option{
		compiler.WithUnknownDirective(policy),
		compiler.WithDirective("formula", directive.Formula{Base: c.FormulaBase}),
	}
	for _, suffix := range sortedKeys(c.Dialects) {
		d, _ := compiler.ParseDialect(c.Dialects[suffix])
		opts = append(opts, compiler.WithSuffix(suffix, d))
	}
	for _, name := range sortedKeys(c.Exec) {
		opts = append(opts, compiler.WithDirective(name, &gen.Command{
			Line:   c.Exec[name],
			Ctx:    ctx,
			Stderr: stderr,
		}))
	}
	return opts, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
