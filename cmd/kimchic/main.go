// Command kimchic is a thin smoke-test wrapper around the kimchilang
// compiler library. It is not part of the core contract: everything it
// does (file I/O, module-path inference, a persistent history) is exactly
// the kind of host responsibility the core package never takes on itself.
package main

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/oxhq/kimchilang/internal/compiler"
	"github.com/oxhq/kimchilang/internal/store"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kimchic",
		Short: "Compile Kimchi source to ES-module JavaScript",
		Long:  "kimchic is a manual smoke-test harness for the kimchilang compiler library.",
	}
	root.AddCommand(newCompileCmd())
	return root
}

func newCompileCmd() *cobra.Command {
	var (
		modulePath string
		debug      bool
		skipTypes  bool
		skipLint   bool
		storeDSN   string
		out        string
	)

	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a single Kimchi source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !hasKnownExtension(path) {
				fmt.Fprintf(os.Stderr, "warning: %s has an unrecognized extension\n", path)
			}

			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			if modulePath == "" {
				modulePath = inferModulePath(path)
			}

			var st *store.Store
			if storeDSN != "" {
				st, err = store.Open(storeDSN, nil)
				if err != nil {
					return fmt.Errorf("open store: %w", err)
				}
				defer st.Close()
			}

			c := compiler.New()
			if st != nil {
				if err := st.WarmStart(cmd.Context(), c.Registry); err != nil {
					fmt.Fprintf(os.Stderr, "warning: warm start failed: %v\n", err)
				}
			}

			start := time.Now()
			result := c.Compile(string(src), compiler.Options{
				ModulePath:    modulePath,
				SkipTypeCheck: skipTypes,
				SkipLint:      skipLint,
				Debug:         debug,
			})
			elapsed := time.Since(start)

			for _, d := range result.Diags {
				fmt.Fprintln(os.Stderr, d.Error())
			}
			if result.Diags.HasFatal() {
				return fmt.Errorf("compile failed with %d diagnostic(s)", len(result.Diags))
			}

			if st != nil {
				st.RecordCompileRun(store.CompileRun{
					ModulePath:      modulePath,
					SourceHash:      fmt.Sprintf("%x", sha256.Sum256(src)),
					EmittedHash:     fmt.Sprintf("%x", sha256.Sum256([]byte(result.Code))),
					DiagnosticCount: len(result.Diags),
					DurationMillis:  elapsed.Milliseconds(),
				})
				if shape, ok := c.Registry.Lookup(modulePath); ok {
					if err := st.PublishSnapshot(modulePath, shape, nil); err != nil {
						fmt.Fprintf(os.Stderr, "warning: publish snapshot failed: %v\n", err)
					}
				}
			}

			if out != "" {
				if err := os.WriteFile(out, []byte(result.Code), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				return nil
			}
			fmt.Println(result.Code)
			return nil
		},
	}

	cmd.Flags().StringVarP(&modulePath, "module", "m", "", "dotted export-registry path (inferred from the file path if omitted)")
	cmd.Flags().BoolVar(&debug, "debug", false, "re-validate emitted JavaScript with the tree-sitter grammar check")
	cmd.Flags().BoolVar(&skipTypes, "skip-typecheck", false, "skip the type-checking pass")
	cmd.Flags().BoolVar(&skipLint, "skip-lint", false, "skip the linting pass")
	cmd.Flags().StringVar(&storeDSN, "store", "", "path to a SQLite compile-history database; empty disables persistence")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write emitted JavaScript here instead of stdout")

	return cmd
}

func hasKnownExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, known := range compiler.KnownExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// inferModulePath turns a relative file path into a dotted export-registry
// path, e.g. "app/services/billing.km" -> "app.services.billing".
func inferModulePath(path string) string {
	trimmed := strings.TrimSuffix(path, filepath.Ext(path))
	trimmed = filepath.ToSlash(trimmed)
	trimmed = strings.TrimPrefix(trimmed, "./")
	return strings.ReplaceAll(trimmed, "/", ".")
}
