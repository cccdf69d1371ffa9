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


// This CLI utility compiles markdown documents to HTML, either one
// document at a time or by serving a directory of them.
//
// Usage:
//   mdc [command]
//
// Available Commands:
//   help        Help about any command
//   html        HTML output generator for markdown source files
//   serve       Serve a directory of markdown source files as HTML
//
// Flags:
//       --config   path of a YAML configuration file
//       --debug    log at debug level with source locations
//   -h, --help     help for mdc
//
// Use "mdc [command] --help" for more information about a command.
package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"akhil.cc/mdc/compiler"
	"akhil.cc/mdc/config"
	"akhil.cc/mdc/internal/logging"
	"akhil.cc/mdc/internal/source"
	"akhil.cc/mdc/server"
	"github.com/spf13/cobra"
)

func prefix(msg string, err error) error {
	return errors.New(msg + err.Error())
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var configfile string
	var debug bool
	rootCmd := &cobra.Command{
		Use:   "mdc",
		Short: "markdown to HTML compiler",
		Long: `This CLI utility compiles markdown documents to HTML, either one
document at a time or by serving a directory of them.`,
		SilenceUsage: true,
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.PersistentFlags().StringVar(&configfile, "config", "", "``path of a YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level with source locations")

	var outputfile, dialect string
	var timeout time.Duration
	prefixHTML := "(HTML) "
	htmlCmd := &cobra.Command{
		Use:   "html [input] [-o output]",
		Short: "HTML output generator for markdown source files",
		Long: `This command compiles one markdown document to HTML.
The dialect is chosen from the suffix of the input file: ".md" is
the minimal dialect and ".markdown" the extended one, which adds
heading anchors, address links and directive blocks. Use --dialect
to override it, for example when reading standard input.

If no input file is specified, input is read from
standard input. Similarly, if no output argument is
specified, output is written to standard output.`,
		Args:                  cobra.MaximumNArgs(1),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configfile)
			if err != nil {
				return prefix(prefixHTML, err)
			}
			name := ""
			var text string
			if len(args) != 0 {
				name = args[0]
				text, err = source.ReadFile(name)
			} else {
				text, err = source.Read(cmd.InOrStdin())
			}
			if err != nil {
				return prefix(prefixHTML, err)
			}
			ctx := context.Background()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			opts, err := cfg.CompilerOptions(ctx, cmd.ErrOrStderr())
			if err != nil {
				return prefix(prefixHTML, err)
			}
			c := compiler.New(opts...)
			doc := c.Source(name, text)
			if dialect != "" {
				d, ok := compiler.ParseDialect(dialect)
				if !ok {
					return prefix(prefixHTML, errors.New("unknown dialect "+dialect))
				}
				doc.Dialect = d
			}
			out, err := c.Compile(doc)
			if err != nil {
				return prefix(prefixHTML, err)
			}
			w := cmd.OutOrStdout()
			if len(outputfile) != 0 {
				f, err := os.Create(outputfile)
				if err != nil {
					return prefix(prefixHTML, err)
				}
				defer f.Close()
				w = f
			}
			if _, err := io.WriteString(w, out); err != nil {
				return prefix(prefixHTML, err)
			}
			return nil
		},
	}
	htmlCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		if err != nil {
			return prefix(prefixHTML, err)
		}
		return nil
	})
	// pflag includes the argument type when it unquotes its usage.
	// To prevent this behavior we prefix the usage with backquotes ``.
	htmlCmd.Flags().StringVarP(&outputfile, "output", "o", "", "``name of the output file")
	htmlCmd.Flags().StringVar(&dialect, "dialect", "", "``dialect of the input, minimal or extended")
	htmlCmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "``timeout used to halt directive commands that run too long")

	var addr, root string
	var interval time.Duration
	prefixServe := "(serve) "
	serveCmd := &cobra.Command{
		Use:   "serve [-a addr] [-r root]",
		Short: "Serve a directory of markdown source files as HTML",
		Long: `This command serves every markdown document below a root
directory, compiled to HTML on each request. Clients connected to
the /_push WebSocket endpoint name a document in a text frame and
receive its HTML again whenever the file changes.`,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configfile)
			if err != nil {
				return prefix(prefixServe, err)
			}
			logger, err := logging.New(cmd.ErrOrStderr(), logging.Config{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
				Debug:  debug,
			})
			if err != nil {
				return prefix(prefixServe, err)
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			if root == "" {
				root = cfg.Server.Root
			}
			if interval <= 0 {
				interval = time.Second
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			opts, err := cfg.CompilerOptions(ctx, cmd.ErrOrStderr())
			if err != nil {
				return prefix(prefixServe, err)
			}
			s := server.New(root, compiler.New(opts...), logger)
			srv := &http.Server{Addr: addr, Handler: s, ReadHeaderTimeout: 10 * time.Second}
			go s.Watch(ctx, interval)
			go func() {
				<-ctx.Done()
				shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdown)
			}()
			logger.Info("serve", "addr", addr, "root", root)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return prefix(prefixServe, err)
			}
			return nil
		},
	}
	serveCmd.Flags().StringVarP(&addr, "addr", "a", "", "``address to listen on (default from config, localhost:8080)")
	serveCmd.Flags().StringVarP(&root, "root", "r", "", "``directory holding the documents (default from config, .)")
	serveCmd.Flags().DurationVar(&interval, "interval", time.Second, "``how often changed documents are pushed")

	rootCmd.AddCommand(htmlCmd, serveCmd)
	return rootCmd
}
